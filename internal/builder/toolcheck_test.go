package builder

import (
	"context"
	"errors"
	"testing"

	"github.com/qobs-build/apmbuild/internal/proc"
)

func TestCheckTools(t *testing.T) {
	versions := map[string]string{
		"/bin/meson": "1.3.2\n",
		"/bin/ninja": "1.8.1\n",
		"/bin/cmake": "cmake version 3.28.3\n\nCMake suite maintained and supported by Kitware.\n",
		"/bin/c++":   "c++ (GCC) 13.2.0\n",
		"/bin/weird": "no version here\n",
	}
	runner := &fakeRunner{hook: func(c proc.Command) ([]byte, error) {
		return []byte(versions[c.Name]), nil
	}}
	lookPath := func(name string) (string, error) {
		if _, ok := versions["/bin/"+name]; ok {
			return "/bin/" + name, nil
		}
		return "", errors.New("not found")
	}

	tools := []Tool{
		{Name: "configure", Program: "meson", MinVersion: "v0.63.0"},
		{Name: "build", Program: "ninja", MinVersion: "v1.8.2"},
		{Name: "cmake", Program: "cmake", MinVersion: "v3.16.0"},
		{Name: "c++ compiler", Program: "c++"},
		{Name: "weird", Program: "weird", MinVersion: "v1.0.0"},
		{Name: "archiver", Program: "llvm-ar", Optional: true},
		{Name: "nothing", Program: ""},
	}

	statuses, err := CheckTools(context.Background(), tools, runner, lookPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(statuses) != len(tools) {
		t.Fatalf("got %d statuses for %d tools", len(statuses), len(tools))
	}

	wantOK := []bool{true, false, true, true, false, false, false}
	wantVersion := []string{"v1.3.2", "v1.8.1", "v3.28.3", "v13.2.0", "", "", ""}
	for i, s := range statuses {
		if s.Tool != tools[i] {
			t.Errorf("status %d is for %+v, want %+v", i, s.Tool, tools[i])
		}
		if s.OK() != wantOK[i] {
			t.Errorf("%s: OK = %v (%v), want %v", s.Name, s.OK(), s.Err, wantOK[i])
		}
		if s.Version != wantVersion[i] {
			t.Errorf("%s: Version = %q, want %q", s.Name, s.Version, wantVersion[i])
		}
	}
	if statuses[0].Path != "/bin/meson" {
		t.Errorf("meson path = %q", statuses[0].Path)
	}
}

func TestCheckToolsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := CheckTools(ctx, []Tool{{Name: "configure", Program: "meson"}}, &fakeRunner{}, func(string) (string, error) { return "/bin/meson", nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRequiredTools(t *testing.T) {
	t.Setenv("CMAKE", "cmake")
	t.Setenv("CMAKE_GENERATOR", "")
	b, _ := newTestBuilder(t, "", Options{System: "cmake"})

	tools := b.RequiredTools()
	if len(tools) != 4 {
		t.Fatalf("tools = %+v", tools)
	}
	if tools[0].Program != "cmake" || tools[0].MinVersion != "v3.16.0" {
		t.Errorf("configure tool = %+v", tools[0])
	}
	if tools[1].Program != "ninja" || tools[1].MinVersion != "v1.8.2" {
		t.Errorf("build tool = %+v", tools[1])
	}
	if !tools[2].Optional || !tools[3].Optional {
		t.Error("compiler required although there is no shim source")
	}
}
