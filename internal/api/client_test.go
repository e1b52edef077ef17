package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeCreds struct {
	token    string
	deviceID string
}

func (f *fakeCreds) Token() string             { return f.token }
func (f *fakeCreds) DeviceID() (string, error) { return f.deviceID, nil }

func TestPairStatus_CredentialsInQuery(t *testing.T) {
	var gotToken, gotDevice string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.URL.Query().Get("token")
		gotDevice = r.URL.Query().Get("device_id")
		json.NewEncoder(w).Encode(map[string]bool{"paired": true})
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeCreds{token: "tok-1", deviceID: "dev-1"})
	paired, err := c.PairStatus(context.Background())
	if err != nil {
		t.Fatalf("PairStatus: %v", err)
	}
	if !paired {
		t.Error("paired = false, want true")
	}
	if gotToken != "tok-1" || gotDevice != "dev-1" {
		t.Errorf("credentials = (%q, %q), want (tok-1, dev-1)", gotToken, gotDevice)
	}
}

func TestPairStatus_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeCreds{token: "stale"})
	_, err := c.PairStatus(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestPairStatus_ServiceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeCreds{})
	_, err := c.PairStatus(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestSubmitPair_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var body struct {
			Code     string `json:"code"`
			DeviceID string `json:"deviceId"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.Code != "1234" || body.DeviceID != "dev-1" {
			t.Errorf("body = %+v", body)
		}
		json.NewEncoder(w).Encode(map[string]string{"token": "fresh-token"})
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeCreds{deviceID: "dev-1"})
	tok, err := c.SubmitPair(context.Background(), "1234")
	if err != nil {
		t.Fatalf("SubmitPair: %v", err)
	}
	if tok != "fresh-token" {
		t.Errorf("token = %q, want fresh-token", tok)
	}
}

func TestSubmitPair_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeCreds{deviceID: "dev-1"})
	_, err := c.SubmitPair(context.Background(), "9999")
	if !errors.Is(err, ErrRejected) {
		t.Errorf("err = %v, want ErrRejected", err)
	}
}

func TestFetchStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]bool{"paired": true, "aiAvailable": true})
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeCreds{})
	st, err := c.FetchStatus(context.Background())
	if err != nil {
		t.Fatalf("FetchStatus: %v", err)
	}
	if !st.Paired || !st.AIAvailable {
		t.Errorf("status = %+v, want both true", st)
	}
}

func TestSaveConfig_SubsetFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got map[string]string
		json.NewDecoder(r.Body).Decode(&got)
		if _, ok := got["apiKey"]; ok {
			t.Error("empty apiKey should be omitted from the body")
		}
		if got["model"] != "deepseek-chat" {
			t.Errorf("model = %q", got["model"])
		}
		json.NewEncoder(w).Encode(map[string]bool{"ok": true, "aiAvailable": true})
	}))
	defer srv.Close()

	c := New(srv.URL, &fakeCreds{})
	res, err := c.SaveConfig(context.Background(), DesktopConfig{Model: "deepseek-chat"})
	if err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	if !res.OK || !res.AIAvailable {
		t.Errorf("result = %+v", res)
	}
}
