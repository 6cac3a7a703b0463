package epi

import (
	"errors"
	"testing"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		in      string
		want    Query
		wantErr error
	}{
		{in: "I", want: Query{Selector: "I"}},
		{in: "infectious", want: Query{Selector: "infectious"}},
		{in: "infectious:weeks", want: Query{Selector: "infectious", Transform: "weeks"}},
		{in: "cases:p100k", want: Query{Selector: "cases", Transform: "p100k"}},
		{in: "", wantErr: ErrBadSelector},
		{in: ":weeks", wantErr: ErrBadSelector},
		{in: "I:weeks:final", wantErr: ErrBadSelector},
		{in: "a:b:c:d", wantErr: ErrBadSelector},
		{in: "I:", wantErr: ErrUnknownTransform},
	}
	for _, tc := range tests {
		got, err := ParseQuery(tc.in)
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ParseQuery(%q): got err %v, want %v", tc.in, err, tc.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseQuery(%q): unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseQuery(%q): got %+v, want %+v", tc.in, got, tc.want)
		}
	}
}
