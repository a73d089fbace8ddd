package runname

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestEncode(t *testing.T) {
	ts := time.Date(2018, 7, 25, 22, 35, 6, 0, time.UTC)

	tests := []struct {
		name     string
		runName  string
		uniqueID string
		want     string
	}{
		{
			name:     "padded to budget",
			runName:  "myExperiment",
			uniqueID: "112250425472",
			want:     "Run--myExperiment-------112250425472-20180725223506",
		},
		{
			name:     "spaces become underscores",
			runName:  "my run",
			uniqueID: "1",
			want:     "Run--my_run-" + strings.Repeat("-", 23) + "1-20180725223506",
		},
		{
			name:     "empty run name and id",
			runName:  "",
			uniqueID: "",
			want:     "Run---" + strings.Repeat("-", 30) + "-20180725223506",
		},
		{
			name:     "over budget has no filler",
			runName:  strings.Repeat("a", 25),
			uniqueID: "0123456789",
			want:     "Run--" + strings.Repeat("a", 25) + "-0123456789-20180725223506",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(tt.runName, tt.uniqueID, ts)
			if got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
			if got[len(got)-TimestampWidth:] != "20180725223506" {
				t.Errorf("Encode() suffix = %q, want timestamp", got[len(got)-TimestampWidth:])
			}
		})
	}
}

func TestEncode_NonUTCInput(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2020, 1, 1, 1, 0, 0, 0, loc)

	got := Encode("run", "id", ts)
	if !strings.HasSuffix(got, "20191231230000") {
		t.Errorf("Encode() = %q, want UTC suffix 20191231230000", got)
	}
}

func TestDecode(t *testing.T) {
	entry, err := Decode("Run--myExperiment-------112250425472-20180725223506")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	wantTS := time.Date(2018, 7, 25, 22, 35, 6, 0, time.UTC)
	if !entry.Timestamp.Equal(wantTS) {
		t.Errorf("Decode() timestamp = %v, want %v", entry.Timestamp, wantTS)
	}
	if entry.Prefix != "Run--myExperiment-------112250425472-" {
		t.Errorf("Decode() prefix = %q", entry.Prefix)
	}
	if entry.String() != entry.Name {
		t.Errorf("String() = %q, want %q", entry.String(), entry.Name)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "too short", input: "2018072522"},
		{name: "empty", input: ""},
		{name: "non numeric suffix", input: "Run--x-2018072522350a"},
		{name: "hidden file", input: ".DS_Store"},
		{name: "month 13", input: "Run--x-20181325223506"},
		{name: "february 30", input: "Run--x-20180230223506"},
		{name: "hour 24", input: "Run--x-20180725243506"},
		{name: "second 60", input: "Run--x-20180725223560"},
		{name: "signed digits", input: "Run--x-+0180725223506"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.input)
			if err == nil {
				t.Fatalf("Decode(%q) expected error", tt.input)
			}

			var malformed *MalformedNameError
			if !errors.As(err, &malformed) {
				t.Fatalf("Decode(%q) error type = %T, want *MalformedNameError", tt.input, err)
			}
			if malformed.Name != tt.input {
				t.Errorf("MalformedNameError.Name = %q, want %q", malformed.Name, tt.input)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	base := time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC)
	names := []string{"", "a", "my experiment", "résumé", strings.Repeat("x", 40)}
	ids := []string{"", "1", "None", "9f0c4a55-3c1e-4a8f-9a8f-2f0b1f4c0f11"}

	for i, runName := range names {
		for j, id := range ids {
			ts := base.Add(time.Duration(i*1000+j*37) * time.Hour)
			entry, err := Decode(Encode(runName, id, ts))
			if err != nil {
				t.Fatalf("Decode(Encode(%q, %q)) error = %v", runName, id, err)
			}
			if !entry.Timestamp.Equal(ts) {
				t.Errorf("round trip timestamp = %v, want %v", entry.Timestamp, ts)
			}
		}
	}
}

func TestRoundTrip_TruncatesSubSecond(t *testing.T) {
	ts := time.Date(2024, 2, 29, 12, 0, 0, 999_000_000, time.UTC)

	entry, err := Decode(Encode("leap", "1", ts))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !entry.Timestamp.Equal(ts.Truncate(time.Second)) {
		t.Errorf("timestamp = %v, want %v", entry.Timestamp, ts.Truncate(time.Second))
	}
}

func TestEntry_Age(t *testing.T) {
	entry := Entry{Timestamp: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
	now := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)

	if got := entry.Age(now); got != 24*time.Hour {
		t.Errorf("Age() = %v, want 24h", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		runName  string
		uniqueID string
		wantErr  bool
	}{
		{name: "plain", runName: "mnist", uniqueID: "42"},
		{name: "empty", runName: "", uniqueID: ""},
		{name: "spaces allowed", runName: "my run", uniqueID: "x"},
		{name: "slash in run name", runName: "a/b", wantErr: true},
		{name: "backslash in id", runName: "a", uniqueID: `x\y`, wantErr: true},
		{name: "dot dot", runName: "..", wantErr: true},
		{name: "nul", runName: "a\x00b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.runName, tt.uniqueID)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
