package pathutil

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDetectCyclerType(t *testing.T) {
	toyo := t.TempDir()
	if got := DetectCyclerType(toyo); got != CyclerToyo {
		t.Errorf("no Pattern folder: expected TOYO, got %s", got)
	}

	pne := t.TempDir()
	if err := os.Mkdir(filepath.Join(pne, "Pattern"), 0o755); err != nil {
		t.Fatal(err)
	}
	if got := DetectCyclerType(pne); got != CyclerPNE {
		t.Errorf("Pattern folder present: expected PNE, got %s", got)
	}
}

func TestChannelFolders_ToyoNumericOrder(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"93", "86", "100", "notes", "9"} {
		if err := os.Mkdir(filepath.Join(root, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "readme.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	folders, err := ChannelFolders(root, CyclerToyo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"9", "86", "93", "100"}
	if !reflect.DeepEqual(folders, want) {
		t.Errorf("expected %v, got %v", want, folders)
	}
}

func TestChannelFolders_PNEExcludesPattern(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"M02Ch073[073]", "M02Ch072[072]", "Pattern"} {
		if err := os.Mkdir(filepath.Join(root, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	folders, err := ChannelFolders(root, CyclerPNE)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"M02Ch072[072]", "M02Ch073[073]"}
	if !reflect.DeepEqual(folders, want) {
		t.Errorf("expected %v, got %v", want, folders)
	}
}

func TestChannelFolders_MissingPath(t *testing.T) {
	if _, err := ChannelFolders("/nonexistent/raw/data", CyclerToyo); err == nil {
		t.Errorf("expected an error for a missing path")
	}
}

func TestCapacityFromName(t *testing.T) {
	cases := []struct {
		path string
		want float64
	}{
		{"/data/ATL_1689mAh_4.45V/86", 1689},
		{"/data/LGES_G3_4-5mAh_test", 4.5},
		{"/data/sdi.2170.5000mAh(rev2)/12", 5000},
		{"/data/no_capacity_here/86", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := CapacityFromName(tc.path); got != tc.want {
			t.Errorf("%q: expected %v, got %v", tc.path, tc.want, got)
		}
	}
}

func TestBracketToken(t *testing.T) {
	if got := BracketToken("M02Ch073[073]"); got != "073" {
		t.Errorf("expected 073, got %q", got)
	}
	if got := BracketToken("86"); got != "86" {
		t.Errorf("no brackets: expected input unchanged, got %q", got)
	}
}

func TestExpandCycleList(t *testing.T) {
	got, err := ExpandCycleList("1-5 10 15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{1, 2, 3, 4, 5, 10, 15}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	if _, err := ExpandCycleList("3-x"); err == nil {
		t.Errorf("expected an error for a malformed range")
	}
}
