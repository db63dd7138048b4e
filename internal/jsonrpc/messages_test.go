package jsonrpc

import (
	"encoding/json"
	"testing"
)

func TestDecodeRequestKinds(t *testing.T) {
	cases := []struct {
		frame string
		kind  ParamsKind
	}{
		{`{"jsonrpc":"2.0","method":"m","params":[1],"id":1}`, ParamsArray},
		{`{"jsonrpc":"2.0","method":"m","params":{"a":1},"id":1}`, ParamsObject},
		{`{"method":"m","id":1}`, ParamsNone},
		{`{"method":"m","params":null,"id":1}`, ParamsNone},
		{`{"method":"m","params":"x","id":1}`, ParamsInvalid},
	}
	for _, tc := range cases {
		req, err := DecodeRequest([]byte(tc.frame))
		if err != nil {
			t.Fatalf("%s: %v", tc.frame, err)
		}
		if req.Kind() != tc.kind {
			t.Fatalf("%s: expected kind %d, got %d", tc.frame, tc.kind, req.Kind())
		}
	}
}

func TestDecodeRequestErrors(t *testing.T) {
	if req, err := DecodeRequest([]byte(`{nope`)); err == nil || req != nil {
		t.Fatalf("expected parse failure without request, got %v %v", req, err)
	}
	req, err := DecodeRequest([]byte(`{"jsonrpc":"1.0","method":"m","id":"abc"}`))
	if err == nil || req == nil || req.ID.String() != "abc" {
		t.Fatalf("expected version error with id recovered, got %v %v", req, err)
	}
	if _, err := DecodeRequest([]byte(`{"id":1}`)); err == nil {
		t.Fatalf("expected missing method error")
	}
}

func TestDecodeRequestRecoversIDFromMalformedRequest(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"method":5,"id":7}`))
	if err == nil {
		t.Fatal("expected error for non-string method")
	}
	if req == nil {
		t.Fatal("expected partial request")
	}
	if req.ID.String() != "7" || req.Method != "5" {
		t.Fatalf("unexpected partial request: method %q id %q", req.Method, req.ID.String())
	}

	req, err = DecodeRequest([]byte(`{"method":"m","params":{},"id":{"bad":1},"jsonrpc":2}`))
	if err == nil || req == nil {
		t.Fatalf("expected partial request with error, got %v %v", req, err)
	}
	b, _ := json.Marshal(NewErrorResponse(req.ID, ErrorCodeInvalidRequest, "bad", nil))
	if string(b) != `{"jsonrpc":"2.0","error":{"code":-32600,"message":"bad"},"id":{"bad":1}}` {
		t.Fatalf("unexpected error response %s", b)
	}
}

func TestRequestIDIsEchoedVerbatim(t *testing.T) {
	for _, raw := range []string{`1`, `"abc"`, `{"nested":[1,2]}`, `12345678901234567890`} {
		req, err := DecodeRequest([]byte(`{"method":"m","id":` + raw + `}`))
		if err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
		resp, err := NewResultResponse(req.ID, nil)
		if err != nil {
			t.Fatalf("response: %v", err)
		}
		b, _ := json.Marshal(resp)
		want := `{"jsonrpc":"2.0","result":null,"id":` + raw + `}`
		if string(b) != want {
			t.Fatalf("got %s want %s", b, want)
		}
	}
}

func TestMissingIDIsNotification(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"method":"m"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !req.IsNotification() {
		t.Fatalf("expected notification")
	}
	b, _ := json.Marshal(NewErrorResponse(nil, ErrorCodeParseError, "bad", nil))
	if string(b) != `{"jsonrpc":"2.0","error":{"code":-32700,"message":"bad"},"id":null}` {
		t.Fatalf("unexpected error response %s", b)
	}
}
