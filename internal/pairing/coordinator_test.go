package pairing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ginkgo-talk/gtalk-remote/internal/api"
)

type memTokens struct {
	mu    sync.Mutex
	token string
}

func (m *memTokens) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *memTokens) SetToken(tok string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = tok
	return nil
}

type fakePairAPI struct {
	mu          sync.Mutex
	statusRes   bool
	statusErr   error
	submitToken string
	submitErr   error
	submitCalls int
	submitHold  chan struct{} // if set, SubmitPair blocks until closed
}

func (f *fakePairAPI) PairStatus(ctx context.Context) (bool, error) {
	return f.statusRes, f.statusErr
}

func (f *fakePairAPI) SubmitPair(ctx context.Context, code string) (string, error) {
	f.mu.Lock()
	f.submitCalls++
	hold := f.submitHold
	f.mu.Unlock()
	if hold != nil {
		<-hold
	}
	return f.submitToken, f.submitErr
}

func (f *fakePairAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitCalls
}

func collectNotices() (func(Notice), func() []Notice) {
	var mu sync.Mutex
	var got []Notice
	return func(n Notice) {
			mu.Lock()
			got = append(got, n)
			mu.Unlock()
		}, func() []Notice {
			mu.Lock()
			defer mu.Unlock()
			return append([]Notice(nil), got...)
		}
}

func TestEnsurePaired_NoToken(t *testing.T) {
	notify, notices := collectNotices()
	f := &fakePairAPI{}
	c := New(&memTokens{}, f, notify, nil)

	if c.EnsurePaired(context.Background()) {
		t.Error("EnsurePaired = true with no token")
	}
	if c.State() != StateAwaitingCode {
		t.Errorf("state = %v, want awaiting-code", c.State())
	}
	if n := notices(); len(n) != 1 || n[0] != NoticeNeedCode {
		t.Errorf("notices = %v, want [NeedCode]", n)
	}
}

func TestEnsurePaired_401ClearsToken(t *testing.T) {
	notify, notices := collectNotices()
	tokens := &memTokens{token: "stale"}
	f := &fakePairAPI{statusErr: api.ErrUnauthorized}
	c := New(tokens, f, notify, nil)

	if c.EnsurePaired(context.Background()) {
		t.Error("EnsurePaired = true on 401")
	}
	if tokens.Token() != "" {
		t.Errorf("token not cleared: %q", tokens.Token())
	}
	if c.State() != StateAwaitingCode {
		t.Errorf("state = %v, want awaiting-code", c.State())
	}
	if n := notices(); len(n) != 1 || n[0] != NoticeAuthExpired {
		t.Errorf("notices = %v, want [AuthExpired]", n)
	}
}

func TestEnsurePaired_ServiceUnavailableKeepsState(t *testing.T) {
	notify, notices := collectNotices()
	tokens := &memTokens{token: "tok"}
	f := &fakePairAPI{statusErr: api.ErrUnavailable}
	c := New(tokens, f, notify, nil)

	before := c.State()
	if c.EnsurePaired(context.Background()) {
		t.Error("EnsurePaired = true on service failure")
	}
	if c.State() != before {
		t.Errorf("state changed: %v → %v", before, c.State())
	}
	if tokens.Token() != "tok" {
		t.Error("token should survive a transient service failure")
	}
	if n := notices(); len(n) != 1 || n[0] != NoticeServiceUnavailable {
		t.Errorf("notices = %v, want [ServiceUnavailable]", n)
	}
}

func TestEnsurePaired_Confirmed(t *testing.T) {
	f := &fakePairAPI{statusRes: true}
	c := New(&memTokens{token: "tok"}, f, nil, nil)

	if !c.EnsurePaired(context.Background()) {
		t.Fatal("EnsurePaired = false, want true")
	}
	if c.State() != StatePaired {
		t.Errorf("state = %v, want paired", c.State())
	}
}

func TestEnsurePaired_NotYetPaired(t *testing.T) {
	notify, notices := collectNotices()
	f := &fakePairAPI{statusRes: false}
	c := New(&memTokens{token: "tok"}, f, notify, nil)

	if c.EnsurePaired(context.Background()) {
		t.Error("EnsurePaired = true for unpaired device")
	}
	if c.State() != StateAwaitingCode {
		t.Errorf("state = %v, want awaiting-code", c.State())
	}
	if n := notices(); len(n) != 1 || n[0] != NoticeNeedCode {
		t.Errorf("notices = %v, want [NeedCode]", n)
	}
}

func TestSubmitCode_FormatRejectedLocally(t *testing.T) {
	notify, notices := collectNotices()
	f := &fakePairAPI{}
	c := New(&memTokens{}, f, notify, nil)

	for _, code := range []string{"12a4", "123", "12345", "", "abcd"} {
		if err := c.SubmitCode(context.Background(), code); !errors.Is(err, ErrBadFormat) {
			t.Errorf("SubmitCode(%q) = %v, want ErrBadFormat", code, err)
		}
	}
	if f.calls() != 0 {
		t.Errorf("network calls = %d, want 0 for malformed codes", f.calls())
	}
	for _, n := range notices() {
		if n != NoticeCodeFormat {
			t.Errorf("unexpected notice %v", n)
		}
	}
}

func TestSubmitCode_Success(t *testing.T) {
	tokens := &memTokens{}
	f := &fakePairAPI{submitToken: "fresh"}
	var pairedCalled bool
	c := New(tokens, f, nil, func() { pairedCalled = true })

	if err := c.SubmitCode(context.Background(), "1234"); err != nil {
		t.Fatalf("SubmitCode: %v", err)
	}
	if tokens.Token() != "fresh" {
		t.Errorf("token = %q, want fresh", tokens.Token())
	}
	if c.State() != StatePaired {
		t.Errorf("state = %v, want paired", c.State())
	}
	if !pairedCalled {
		t.Error("onPaired hook never fired")
	}
}

func TestSubmitCode_Invalid(t *testing.T) {
	notify, notices := collectNotices()
	f := &fakePairAPI{submitErr: api.ErrRejected}
	c := New(&memTokens{}, f, notify, nil)

	if err := c.SubmitCode(context.Background(), "9999"); !errors.Is(err, api.ErrRejected) {
		t.Errorf("err = %v, want ErrRejected", err)
	}
	if c.State() != StateAwaitingCode {
		t.Errorf("state = %v, want awaiting-code", c.State())
	}
	if n := notices(); len(n) != 1 || n[0] != NoticeCodeInvalid {
		t.Errorf("notices = %v, want [CodeInvalid]", n)
	}
}

func TestSubmitCode_SingleFlight(t *testing.T) {
	hold := make(chan struct{})
	f := &fakePairAPI{submitHold: hold}
	c := New(&memTokens{}, f, nil, nil)

	done := make(chan error, 1)
	go func() { done <- c.SubmitCode(context.Background(), "1234") }()

	// Wait for the first submit to reach the API.
	deadline := time.Now().Add(2 * time.Second)
	for f.calls() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first submit never started")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Second submit while the first is pending: no-op, no extra call.
	if err := c.SubmitCode(context.Background(), "1234"); err != nil {
		t.Errorf("concurrent SubmitCode = %v, want nil no-op", err)
	}
	if f.calls() != 1 {
		t.Errorf("network calls = %d, want 1", f.calls())
	}

	close(hold)
	if err := <-done; err != nil {
		t.Fatalf("first SubmitCode: %v", err)
	}
}
