package reliability

import (
	"context"
	"errors"
	"testing"
)

func TestIsRetryableHTTPStatus(t *testing.T) {
	cases := []struct {
		code int
		want bool
	}{
		{200, false},
		{400, false},
		{401, false},
		{404, false},
		{429, true},
		{500, true},
		{503, true},
	}
	for _, tc := range cases {
		got := IsRetryableHTTPStatus(tc.code)
		if got != tc.want {
			t.Fatalf("IsRetryableHTTPStatus(%d) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestClassify(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		status int
		err    error
		want   Class
	}{
		{200, nil, ClassOK},
		{0, boom, ClassTransient},
		{503, boom, ClassTransient},
		{401, boom, ClassPermanent},
		{404, boom, ClassPermanent},
		{0, context.Canceled, ClassCanceled},
	}
	for _, tc := range cases {
		if got := Classify(tc.status, tc.err); got != tc.want {
			t.Fatalf("Classify(%d, %v) = %q, want %q", tc.status, tc.err, got, tc.want)
		}
	}
}
