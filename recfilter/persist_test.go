package recfilter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func exampleState() *State {
	state := NewState(0.2, 0.6)
	state.place(r1, AccessFiltered)
	state.place(r2, StabilityFiltered)
	state.place(r3, Active)
	state.place("bed_:0000|top", HeightFiltered)
	state.ToggleManual(r1)
	state.ToggleManual("sink_:0000|counter")
	state.MaxHeight = 1.8
	state.MinHeight = 0.1
	return state
}

func TestExportImport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenes", "102344", "rec_filter_data.json")
	state := exampleState()
	test.That(t, state.Export(path), test.ShouldBeNil)

	loaded, err := Import(path)
	test.That(t, err, test.ShouldBeNil)
	for _, b := range []Bucket{Active, ManuallyFiltered, AccessFiltered, StabilityFiltered, HeightFiltered} {
		test.That(t, loaded.Set(b).Names(), test.ShouldResemble, state.Set(b).Names())
	}
	test.That(t, loaded.AccessThreshold, test.ShouldEqual, 0.2)
	test.That(t, loaded.StabilityThreshold, test.ShouldEqual, 0.6)
	test.That(t, loaded.MaxHeight, test.ShouldEqual, 1.8)
	test.That(t, loaded.MinHeight, test.ShouldEqual, 0.1)
	test.That(t, loaded.Bucket(r1), test.ShouldEqual, ManuallyFiltered)
	test.That(t, loaded.AutomaticBucket(r1), test.ShouldEqual, AccessFiltered)
}

func TestExportLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec_filter_data.json")
	test.That(t, NewState(DefaultAccessThreshold, DefaultStabilityThreshold).Export(path), test.ShouldBeNil)

	data, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	var raw map[string]interface{}
	test.That(t, json.Unmarshal(data, &raw), test.ShouldBeNil)
	test.That(t, raw["active"], test.ShouldResemble, []interface{}{})
	test.That(t, raw["height_filtered"], test.ShouldResemble, []interface{}{})
	test.That(t, raw["access_threshold"], test.ShouldEqual, 0.12)
	test.That(t, raw["stability threshold"], test.ShouldEqual, 0.5)
	test.That(t, raw, test.ShouldContainKey, "max_height")
	test.That(t, raw, test.ShouldContainKey, "min_height")
	test.That(t, string(data), test.ShouldContainSubstring, "\n  \"active\": []")
}

func TestImportErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := Import(filepath.Join(dir, "missing.json"))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "cannot read filter file")
	})

	t.Run("malformed", func(t *testing.T) {
		path := filepath.Join(dir, "malformed.json")
		test.That(t, os.WriteFile(path, []byte(`{"active": [`), 0o600), test.ShouldBeNil)
		_, err := Import(path)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "cannot parse filter file")
	})

	for _, key := range []string{"active", "manually_filtered", "access_filtered", "stability_filtered", "height_filtered"} {
		t.Run("missing "+key, func(t *testing.T) {
			doc := map[string]interface{}{
				"active":              []string{},
				"manually_filtered":   []string{},
				"access_filtered":     []string{},
				"stability_filtered":  []string{},
				"height_filtered":     []string{},
				"access_threshold":    0.12,
				"stability threshold": 0.5,
			}
			delete(doc, key)
			data, err := json.Marshal(doc)
			test.That(t, err, test.ShouldBeNil)
			path := filepath.Join(dir, key+".json")
			test.That(t, os.WriteFile(path, data, 0o600), test.ShouldBeNil)

			_, err = Import(path)
			var validationErr *ValidationError
			test.That(t, errors.As(err, &validationErr), test.ShouldBeTrue)
			test.That(t, validationErr.Key, test.ShouldEqual, key)
			test.That(t, validationErr.Path, test.ShouldEqual, path)
			test.That(t, err.Error(), test.ShouldContainSubstring, key)
		})
	}

	t.Run("stale names are kept", func(t *testing.T) {
		path := filepath.Join(dir, "stale.json")
		doc := `{"active": ["gone_:0000|top"], "manually_filtered": [], "access_filtered": [],
			"stability_filtered": [], "height_filtered": []}`
		test.That(t, os.WriteFile(path, []byte(doc), 0o600), test.ShouldBeNil)
		state, err := Import(path)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, state.Active(), test.ShouldResemble, []string{"gone_:0000|top"})
	})
}

func TestExportError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	test.That(t, os.WriteFile(blocker, nil, 0o600), test.ShouldBeNil)

	err := exampleState().Export(filepath.Join(blocker, "rec_filter_data.json"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot export filter state")
}
