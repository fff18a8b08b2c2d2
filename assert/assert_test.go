package assert

import (
	"fmt"
	"strings"
	"testing"
)

type recordingT struct {
	msgs []string
}

func (t *recordingT) Errorf(format string, args ...interface{}) {
	t.msgs = append(t.msgs, fmt.Sprintf(format, args...))
}

func TestMessageFromMsgAndArgs(t *testing.T) {
	tests := []struct {
		args []interface{}
		exp  string
	}{
		{nil, ""},
		{[]interface{}{"plain 100%"}, "plain 100%"},
		{[]interface{}{42}, "42"},
		{[]interface{}{"got %d pairs for %s", 3, "a:1"}, "got 3 pairs for a:1"},
	}
	for _, test := range tests {
		got := messageFromMsgAndArgs(test.args...)
		if got != test.exp {
			t.Errorf("messageFromMsgAndArgs(%v): got %q, want %q", test.args, got, test.exp)
		}
	}
}

func TestFailureMessages(t *testing.T) {
	rt := &recordingT{}
	if True(rt, false, "input %q", "a:1") {
		t.Fatal("True(false) should fail")
	}
	if Equal(rt, 1, 2, "only message") {
		t.Fatal("Equal(1, 2) should fail")
	}
	if !NoError(rt, nil, "not shown") {
		t.Fatal("NoError(nil) should pass")
	}
	if len(rt.msgs) != 2 {
		t.Fatalf("got %d failures, want 2", len(rt.msgs))
	}
	if !strings.Contains(rt.msgs[0], `input "a:1"`) {
		t.Errorf("missing formatted message in %q", rt.msgs[0])
	}
	if !strings.Contains(rt.msgs[1], "only message") {
		t.Errorf("missing message in %q", rt.msgs[1])
	}
}
