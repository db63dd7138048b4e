package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestManifestExcludesBuiltins(t *testing.T) {
	for _, n := range []int{0, 1, 5} {
		t.Run(fmt.Sprintf("%d methods", n), func(t *testing.T) {
			p, _ := newTestPlugin(t)
			p.Method("init", "user init", constHandler(nil), Optional("options", nil), Optional("configuration", nil))
			for i := 0; i < n; i++ {
				p.Method(fmt.Sprintf("m%d", i), "doc", constHandler(nil))
			}
			p.interceptInit()

			got, err := p.Dispatch(context.Background(), request("getmanifest", ""))
			if err != nil {
				t.Fatalf("getmanifest: %v", err)
			}
			m := got.(*Manifest)
			if len(m.RPCMethods) != n {
				t.Fatalf("expected %d methods, got %+v", n, m.RPCMethods)
			}
			for _, rm := range m.RPCMethods {
				if rm.Name == "getmanifest" || rm.Name == "init" {
					t.Fatalf("builtin %q listed", rm.Name)
				}
			}
		})
	}
}

func TestManifestJSONShape(t *testing.T) {
	p, out := newTestPlugin(t)
	p.Method("hello", "Say hello.", constHandler(nil), Optional("name", "world"))
	p.Method("bare", "", constHandler(nil))
	if err := p.AddOption("greeting", "Hello", "The greeting."); err != nil {
		t.Fatalf("add option: %v", err)
	}

	b, err := json.Marshal(p.Manifest(context.Background()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"options":[{"name":"greeting","type":"string","default":"Hello","description":"The greeting."}],` +
		`"rpcmethods":[{"name":"hello","description":"Say hello.","usage":"[name]"},` +
		`{"name":"bare","description":"Undocumented RPC method from a plugin."}]}`
	if string(b) != want {
		t.Fatalf("unexpected manifest:\n got %s\nwant %s", b, want)
	}

	if !strings.Contains(out.String(), `"level":"warn","message":"RPC method 'bare' does not have a docstring."`) {
		t.Fatalf("expected a warning for the undocumented method, got %q", out.String())
	}
	if strings.Contains(out.String(), "'hello'") {
		t.Fatalf("documented method must not warn")
	}
}

func TestManifestEmptyListsAreArrays(t *testing.T) {
	p, _ := newTestPlugin(t)
	b, _ := json.Marshal(p.Manifest(context.Background()))
	if string(b) != `{"options":[],"rpcmethods":[]}` {
		t.Fatalf("unexpected manifest %s", b)
	}
}

func TestAddOptionDuplicate(t *testing.T) {
	p, _ := newTestPlugin(t)
	if err := p.AddOption("o", "", ""); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := p.AddOption("o", "", ""); !errors.Is(err, ErrDuplicateOption) {
		t.Fatalf("expected ErrDuplicateOption, got %v", err)
	}
}

func TestGetManifestCannotBeReplaced(t *testing.T) {
	p, _ := newTestPlugin(t)
	if err := p.AddMethod("getmanifest", "", constHandler(nil)); !errors.Is(err, ErrDuplicateMethod) {
		t.Fatalf("expected ErrDuplicateMethod, got %v", err)
	}
}
