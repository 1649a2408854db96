package session

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := &Session{
		UserID:    42,
		Username:  "thabo",
		Email:     "thabo@campus.ac.za",
		Language:  "st",
		CreatedAt: 1700000000,
		ExpiresAt: 1700086400,
	}
	data, err := Encode(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *out != *in {
		t.Fatalf("round trip mismatch: %+v vs %+v", out, in)
	}
}

func TestEncodeRejectsLongFields(t *testing.T) {
	in := &Session{Username: string(bytes.Repeat([]byte("u"), 256))}
	if _, err := Encode(in); err == nil {
		t.Fatal("expected error for oversized username")
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	if _, err := Decode([]byte{9, 0, 0}); err == nil {
		t.Fatal("expected error for unknown version")
	}
}

// FuzzSessionDecode exercises the binary session decoder with arbitrary inputs.
// Goal: no panics; malformed input returns an error.
func FuzzSessionDecode(f *testing.F) {
	encoded, err := Encode(&Session{
		UserID:    1,
		Username:  "alice",
		Email:     "a@x.com",
		Language:  "en",
		CreatedAt: 1700000000,
		ExpiresAt: 1700003600,
	})
	if err == nil {
		f.Add(encoded)
		f.Add(encoded[:10])
	}
	f.Add([]byte{})
	f.Add([]byte{1})
	f.Add([]byte{255, 255, 255})

	f.Fuzz(func(t *testing.T, data []byte) {
		s, err := Decode(data)
		if err != nil {
			return
		}
		again, err := Encode(s)
		if err != nil {
			t.Fatalf("re-encode decoded session: %v", err)
		}
		if !bytes.Equal(again, data) {
			t.Fatalf("decode/encode not stable")
		}
	})
}
