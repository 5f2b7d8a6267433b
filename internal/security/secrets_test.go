package security

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestRandomString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		length   int
		alphabet string
		wantErr  bool
	}{
		{name: "negative length", length: -1, alphabet: "abc", wantErr: true},
		{name: "empty alphabet", length: 1, alphabet: "", wantErr: true},
		{name: "zero length", length: 0, alphabet: "abc"},
		{name: "single alphabet character", length: 8, alphabet: "X"},
		{name: "multibyte alphabet", length: 16, alphabet: "αβγ"},
		{name: "normal generation", length: 64, alphabet: TemporaryPasswordAlphabet},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			got, err := RandomString(test.length, test.alphabet)
			if test.wantErr {
				if err == nil {
					t.Fatalf("RandomString(%d, %q) expected error, got nil", test.length, test.alphabet)
				}
				return
			}

			if err != nil {
				t.Fatalf("RandomString(%d, %q) returned error: %v", test.length, test.alphabet, err)
			}
			if utf8.RuneCountInString(got) != test.length {
				t.Fatalf("RandomString(%d, %q) len = %d, want %d", test.length, test.alphabet, utf8.RuneCountInString(got), test.length)
			}
			for _, char := range got {
				if !strings.ContainsRune(test.alphabet, char) {
					t.Fatalf("RandomString(%d, %q) produced char %q outside alphabet", test.length, test.alphabet, char)
				}
			}
		})
	}
}

func TestTemporaryPasswordEnforcesMinimumLengthAndMix(t *testing.T) {
	t.Parallel()

	for range 20 {
		password, err := TemporaryPassword(4)
		if err != nil {
			t.Fatalf("TemporaryPassword returned error: %v", err)
		}
		if len(password) != minTemporaryPasswordLength {
			t.Fatalf("TemporaryPassword len = %d, want %d", len(password), minTemporaryPasswordLength)
		}
		if !strings.ContainsAny(password, "23456789") {
			t.Fatalf("TemporaryPassword %q has no digit", password)
		}
		if strings.IndexFunc(password, isASCIILetter) < 0 {
			t.Fatalf("TemporaryPassword %q has no letter", password)
		}
	}
}

func TestHashPasswordRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("StrongPass1")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !CheckPassword(hash, "StrongPass1") {
		t.Fatal("expected matching password to verify")
	}
	if CheckPassword(hash, "WrongPass1") {
		t.Fatal("expected wrong password to be rejected")
	}
}
