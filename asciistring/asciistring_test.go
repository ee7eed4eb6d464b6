package asciistring_test

import (
	"errors"
	"testing"

	"github.com/benwr/zebrasign/asciistring"
	"github.com/benwr/zebrasign/zerrors"
)

func TestFromBytes_Rejects(t *testing.T) {
	for _, b := range [][]byte{
		{0x00},
		{0x1F},
		{0x20}, // space
		{0x7F}, // DEL
		{0x80},
		{0xFF},
		[]byte("😊"), // multi-byte UTF-8
	} {
		if _, err := asciistring.FromBytes(b); !errors.Is(err, zerrors.ErrInvalidInput) {
			t.Errorf("FromBytes(%v) = _, %v, want ErrInvalidInput", b, err)
		}
	}
}

func TestFromBytes_Accepts(t *testing.T) {
	for _, s := range []string{"Hi", "!", "zebra@example.com", "~"} {
		a, err := asciistring.New(s)
		if err != nil {
			t.Fatalf("New(%q) failed: %v", s, err)
		}
		if a.String() != s {
			t.Errorf("String() = %q, want %q", a.String(), s)
		}
	}
}

func TestEqual(t *testing.T) {
	a, _ := asciistring.New("abc")
	b, _ := asciistring.New("abc")
	c, _ := asciistring.New("abd")
	if !a.Equal(b) {
		t.Error("expected equal")
	}
	if a.Equal(c) {
		t.Error("expected not equal")
	}
}
