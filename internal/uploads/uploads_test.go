package uploads

import (
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"scan.png", "scan.png"},
		{"My Scan (1).tif", "My_Scan_1.tif"},
		{"../../etc/passwd", "passwd"},
		{`C:\scans\front.jpg`, "front.jpg"},
		{".hidden", "hidden"},
		{"???", "scan"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNameIsTimeOrdered(t *testing.T) {
	now := time.Date(2024, time.May, 1, 10, 0, 0, 0, time.UTC)
	a := Name(SideFront, "a.png", now)
	b := Name(SideBack, "b.png", now.Add(time.Second))

	if !strings.HasSuffix(a, "_front_a.png") {
		t.Errorf("unexpected name %q", a)
	}
	if a >= b {
		t.Errorf("expected %q < %q", a, b)
	}

	id, err := ulid.Parse(strings.SplitN(a, "_", 2)[0])
	if err != nil {
		t.Fatalf("name does not start with a ulid: %v", err)
	}
	if got := ulid.Time(id.Time()); !got.Equal(now) {
		t.Errorf("ulid time = %s, want %s", got, now)
	}
}

func TestSaveReadRemove(t *testing.T) {
	dir, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	name, err := dir.Save(SideFront, "card.png", []byte("data"), time.Now())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !dir.Exists(name) {
		t.Fatal("saved file missing")
	}

	data, err := dir.Read(name)
	if err != nil || string(data) != "data" {
		t.Fatalf("Read = %q, %v", data, err)
	}

	files, err := dir.List()
	if err != nil || len(files) != 1 || files[0].Name != name {
		t.Fatalf("List = %v, %v", files, err)
	}

	removed, err := dir.Remove(name)
	if err != nil || !removed {
		t.Fatalf("Remove = %v, %v", removed, err)
	}
	removed, err = dir.Remove(name)
	if err != nil || removed {
		t.Errorf("second Remove = %v, %v", removed, err)
	}
}

func TestResolveRejectsTraversal(t *testing.T) {
	dir, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"../x", "a/b", "", ".env"} {
		if _, err := dir.Read(name); err == nil {
			t.Errorf("Read(%q) should fail", name)
		}
	}
}

func TestParseSide(t *testing.T) {
	if s, _ := ParseSide(""); s != SideFront {
		t.Errorf("default side = %q", s)
	}
	if _, err := ParseSide("top"); err == nil {
		t.Error("expected error for unknown side")
	}
}
