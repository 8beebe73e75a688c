package logging

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"
)

type placement struct {
	Receptacle string
	count      int
}

type placementReport struct {
	Object string
	Where  placement
	note   string
}

// assertLogLine reads one line from actual and compares it to expected field by field. The time
// only has to parse and the caller only has to match on file name.
func assertLogLine(t *testing.T, actual *bytes.Buffer, expected string) {
	t.Helper()

	line, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)
	actualParts := strings.Split(strings.TrimSuffix(line, "\n"), "\t")
	expectedParts := strings.Split(expected, "\t")
	test.That(t, len(actualParts), test.ShouldEqual, len(expectedParts))

	_, err = time.Parse(DefaultTimeFormatStr, actualParts[0])
	test.That(t, err, test.ShouldBeNil)
	test.That(t, actualParts[1], test.ShouldEqual, expectedParts[1])

	actualFile, actualLine, found := strings.Cut(actualParts[2], ":")
	test.That(t, found, test.ShouldBeTrue)
	expectedFile, _, _ := strings.Cut(expectedParts[2], ":")
	test.That(t, actualFile, test.ShouldEqual, expectedFile)
	_, err = strconv.Atoi(actualLine)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, actualParts[3], test.ShouldEqual, expectedParts[3])
	if len(actualParts) == 4 {
		return
	}

	var expectedFields, actualFields map[string]any
	test.That(t, json.Unmarshal([]byte(expectedParts[4]), &expectedFields), test.ShouldBeNil)
	test.That(t, json.Unmarshal([]byte(actualParts[4]), &actualFields), test.ShouldBeNil)
	test.That(t, actualFields, test.ShouldResemble, expectedFields)
}

func TestConsoleOutputFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := newImpl("", DEBUG, true, NewWriterAppender(&buf))

	logger.Info("loaded 12 receptacles")
	assertLogLine(t, &buf, "2023-10-30T09:12:09.459-0400\tINFO\tlogging/impl_test.go:1\tloaded 12 receptacles")

	logger.Infof("stepped %d frames", 3)
	assertLogLine(t, &buf, "2023-10-30T09:12:09.459-0400\tINFO\tlogging/impl_test.go:1\tstepped 3 frames")

	logger.Infow("classified", "active", 4, "filter", "rec_filter_data.json")
	assertLogLine(t, &buf,
		"2023-10-30T09:12:09.459-0400\tINFO\tlogging/impl_test.go:1\tclassified\t"+
			`{"active":4,"filter":"rec_filter_data.json"}`)

	logger.Warnw("placed", "report", placementReport{"024_bowl_:0003", placement{"table_:0000|top", 2}, "x"})
	assertLogLine(t, &buf,
		"2023-10-30T09:12:09.459-0400\tWARN\tlogging/impl_test.go:1\tplaced\t"+
			`{"report":{"Object":"024_bowl_:0003","Where":{"Receptacle":"table_:0000|top"}}}`)

	logger.Errorw("unpaired", "orphan")
	assertLogLine(t, &buf,
		"2023-10-30T09:12:09.459-0400\tERROR\tlogging/impl_test.go:1\tunpaired\t"+
			`{"orphan":"unpaired log key"}`)
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := newImpl("", WARN, true, NewWriterAppender(&buf))

	logger.Info("dropped")
	logger.Debugf("dropped %d", 1)
	test.That(t, buf.Len(), test.ShouldEqual, 0)

	logger.Warn("kept")
	assertLogLine(t, &buf, "2023-10-30T09:12:09.459-0400\tWARN\tlogging/impl_test.go:1\tkept")

	logger.SetLevel(DEBUG)
	test.That(t, logger.GetLevel(), test.ShouldEqual, DEBUG)
	logger.Debug("now kept")
	assertLogLine(t, &buf, "2023-10-30T09:12:09.459-0400\tDEBUG\tlogging/impl_test.go:1\tnow kept")
}

func TestSublogger(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	sub := logger.Sublogger("recfilter")
	subsub := sub.Sublogger("watcher")

	sub.Infow("classified", "active", 3)
	subsub.Warn("reload")

	entries := observed.All()
	test.That(t, entries, test.ShouldHaveLength, 2)
	test.That(t, entries[0].LoggerName, test.ShouldEqual, "recfilter")
	test.That(t, entries[0].ContextMap()["active"], test.ShouldEqual, int64(3))
	test.That(t, entries[1].LoggerName, test.ShouldEqual, "recfilter.watcher")
	test.That(t, entries[1].Message, test.ShouldEqual, "reload")

	t.Run("appenders are shared", func(t *testing.T) {
		var buf bytes.Buffer
		root := NewBlankLogger("viewer")
		child := root.Sublogger("clutter")
		root.AddAppender(NewWriterAppender(&buf))
		child.Info("sampled")
		test.That(t, buf.String(), test.ShouldContainSubstring, "viewer.clutter")
		test.That(t, buf.String(), test.ShouldContainSubstring, "sampled")
		test.That(t, root.Sync(), test.ShouldBeNil)
	})
}

func TestLevelFromString(t *testing.T) {
	for _, tc := range []struct {
		in       string
		expected Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warn", WARN},
		{"warning", WARN},
		{"error", ERROR},
	} {
		level, err := LevelFromString(tc.in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, tc.expected)
	}

	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)

	var level Level
	test.That(t, json.Unmarshal([]byte(`"error"`), &level), test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, ERROR)
	out, err := json.Marshal(WARN)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldEqual, `"Warn"`)
}

func TestFormatEntryTimeZones(t *testing.T) {
	when := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	for _, tc := range []struct {
		name   string
		when   time.Time
		suffix string
	}{
		{"utc", when, "Z"},
		{"offset", when.In(time.FixedZone("EDT", -4*60*60)), "-0400"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			line, err := formatEntry(zapcore.Entry{Time: tc.when, Level: zapcore.InfoLevel, Message: "m"}, nil)
			test.That(t, err, test.ShouldBeNil)
			stamp, _, _ := strings.Cut(line, "\t")
			test.That(t, stamp, test.ShouldEndWith, tc.suffix)
			parsed, err := time.Parse(DefaultTimeFormatStr, stamp)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, parsed.Equal(when), test.ShouldBeTrue)
		})
	}
}
