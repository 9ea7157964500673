package ffi

import (
	"bytes"
	"strings"
	"testing"

	"github.com/halcyondb/halcyon-go/errors"
)

func TestBytesRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"nil", nil},
		{"single", []byte{0x7f}},
		{"binary", []byte{0x00, 0x01, 0xfe, 0xff}},
		{"text", []byte("hello, sequence")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arena := newTestArena(1024)
			list := NewAllocationList()
			defer list.Release()

			addr, err := StoreBytes(arena, arena, list, tt.data)
			if err != nil {
				t.Fatal(err)
			}
			got, err := LoadBytes(arena, addr)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, tt.data) {
				t.Fatalf("got %v, want %v", got, tt.data)
			}
		})
	}
}

// An empty sequence encodes as a null pointer with zero length and decodes
// back without touching memory.
func TestEmptySequenceHeader(t *testing.T) {
	arena := newTestArena(256)
	list := NewAllocationList()
	defer list.Release()

	addr, err := StoreBytes(arena, arena, list, nil)
	if err != nil {
		t.Fatal(err)
	}
	ptr, _ := arena.ReadU32(addr + seqPtrOff)
	length, _ := arena.ReadU32(addr + seqLenOff)
	if ptr != 0 || length != 0 {
		t.Fatalf("empty sequence header = {%d, %d}, want {0, 0}", ptr, length)
	}
}

func TestStringRoundTrip(t *testing.T) {
	arena := newTestArena(1024)
	list := NewAllocationList()
	defer list.Release()

	for _, s := range []string{"", "ascii", "héllo wörld", "日本語"} {
		addr, err := StoreString(arena, arena, list, s)
		if err != nil {
			t.Fatalf("store %q: %v", s, err)
		}
		got, err := LoadString(arena, addr)
		if err != nil {
			t.Fatalf("load %q: %v", s, err)
		}
		if got != s {
			t.Fatalf("got %q, want %q", got, s)
		}
	}
}

func TestStoreStringInvalidUTF8(t *testing.T) {
	arena := newTestArena(256)
	list := NewAllocationList()
	defer list.Release()

	_, err := StoreString(arena, arena, list, string([]byte{0xc3, 0x28}))
	wantKind(t, err, errors.KindInvalidUTF8)
}

// Text arriving from the library is validated too: a sequence carrying
// invalid UTF-8 is a decode failure, not replacement characters.
func TestLoadStringInvalidUTF8(t *testing.T) {
	arena := newTestArena(256)
	list := NewAllocationList()
	defer list.Release()

	addr, err := StoreBytes(arena, arena, list, []byte{0xff, 0xfe, 0xfd})
	if err != nil {
		t.Fatal(err)
	}
	_, err = LoadString(arena, addr)
	wantKind(t, err, errors.KindInvalidUTF8)

	if _, err := LoadBytes(arena, addr); err != nil {
		t.Fatalf("same bytes must load as binary: %v", err)
	}
}

func TestStoreBytesTooLarge(t *testing.T) {
	arena := newTestArena(64)
	list := NewAllocationList()
	defer list.Release()

	_, err := StoreBytes(arena, arena, list, make([]byte, 1<<24+1))
	wantKind(t, err, errors.KindOverflow)
}

// Decoding is bounded by the carried length, not the backing allocation:
// shrinking the header hides the tail.
func TestLoadBytesBoundedByLength(t *testing.T) {
	arena := newTestArena(256)
	list := NewAllocationList()
	defer list.Release()

	addr, err := StoreBytes(arena, arena, list, []byte("abcdef"))
	if err != nil {
		t.Fatal(err)
	}
	if err := arena.WriteU32(addr+seqLenOff, 3); err != nil {
		t.Fatal(err)
	}
	got, err := LoadBytes(arena, addr)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "abc" {
		t.Fatalf("got %q, want %q", got, "abc")
	}
}

func TestStringSeqRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		items []string
	}{
		{"empty", nil},
		{"single", []string{"id"}},
		{"several", []string{"id", "", "name", "created_at"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			arena := newTestArena(4096)
			list := NewAllocationList()
			defer list.Release()

			addr, err := StoreStringSeq(arena, arena, list, tt.items)
			if err != nil {
				t.Fatal(err)
			}
			got, err := LoadStringSeq(arena, addr)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.items) {
				t.Fatalf("length = %d, want %d", len(got), len(tt.items))
			}
			for i := range got {
				if got[i] != tt.items[i] {
					t.Fatalf("item %d = %q, want %q", i, got[i], tt.items[i])
				}
			}
		})
	}
}

func TestAllocationListFreesEverything(t *testing.T) {
	arena := newTestArena(4096)
	list := NewAllocationList()

	if _, err := StoreString(arena, arena, list, strings.Repeat("x", 32)); err != nil {
		t.Fatal(err)
	}
	if _, err := StoreBytes(arena, arena, list, []byte("data")); err != nil {
		t.Fatal(err)
	}
	n := list.Count()
	if n == 0 {
		t.Fatal("no allocations tracked")
	}
	list.FreeAndRelease(arena)
	if arena.frees != n {
		t.Fatalf("freed %d allocations, tracked %d", arena.frees, n)
	}
}
