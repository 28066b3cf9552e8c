package object

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// TreeObj
// ---------------------------------------------------------------------------

// MarshalTree serializes a TreeObj. Each entry is encoded as
// "<mode> <name>\0" followed by the 20 raw hash bytes; entries are
// written in ascending Name order.
func MarshalTree(tr *TreeObj) ([]byte, error) {
	sorted := make([]TreeEntry, len(tr.Entries))
	copy(sorted, tr.Entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var buf bytes.Buffer
	prev := ""
	for i, e := range sorted {
		if !ValidEntryName(e.Name) {
			return nil, fmt.Errorf("marshal tree: invalid entry name %q", e.Name)
		}
		if i > 0 && e.Name == prev {
			return nil, fmt.Errorf("marshal tree: duplicate entry name %q", e.Name)
		}
		prev = e.Name

		mode := e.Mode
		if mode == "" {
			mode = ModeFile
		}
		if mode != ModeFile && mode != ModeDir {
			return nil, fmt.Errorf("marshal tree: unknown mode %q for %q", mode, e.Name)
		}

		raw, err := hex.DecodeString(string(e.Hash))
		if err != nil || len(raw) != RawHashLen {
			return nil, fmt.Errorf("marshal tree: invalid hash %q for %q", e.Hash, e.Name)
		}

		fmt.Fprintf(&buf, "%s %s\x00", mode, e.Name)
		buf.Write(raw)
	}
	return buf.Bytes(), nil
}

// UnmarshalTree parses a TreeObj from its serialized form. Entries must
// be sorted by name and unique; anything else is a corrupt object.
func UnmarshalTree(data []byte) (*TreeObj, error) {
	tr := &TreeObj{}
	rest := data
	prev := ""

	for len(rest) > 0 {
		sp := bytes.IndexByte(rest, ' ')
		if sp < 0 {
			return nil, fmt.Errorf("unmarshal tree: missing mode separator")
		}
		mode := string(rest[:sp])
		if mode != ModeFile && mode != ModeDir {
			return nil, fmt.Errorf("unmarshal tree: unknown mode %q", mode)
		}
		rest = rest[sp+1:]

		nul := bytes.IndexByte(rest, 0)
		if nul < 0 {
			return nil, fmt.Errorf("unmarshal tree: missing name terminator")
		}
		name := string(rest[:nul])
		if !ValidEntryName(name) {
			return nil, fmt.Errorf("unmarshal tree: invalid entry name %q", name)
		}
		rest = rest[nul+1:]

		if len(rest) < RawHashLen {
			return nil, fmt.Errorf("unmarshal tree: truncated hash for %q", name)
		}
		h := Hash(hex.EncodeToString(rest[:RawHashLen]))
		rest = rest[RawHashLen:]

		if len(tr.Entries) > 0 && name <= prev {
			return nil, fmt.Errorf("unmarshal tree: entries unsorted or duplicated at %q", name)
		}
		prev = name

		tr.Entries = append(tr.Entries, TreeEntry{Mode: mode, Name: name, Hash: h})
	}
	return tr, nil
}

// ---------------------------------------------------------------------------
// CommitObj
// ---------------------------------------------------------------------------

// MarshalCommit serializes a CommitObj:
//
//	tree H
//	parent H     (zero, one, or two)
//	author A T
//
//	message
//
// A trailing newline terminates the message.
func MarshalCommit(c *CommitObj) ([]byte, error) {
	if !ValidHash(string(c.TreeHash)) {
		return nil, fmt.Errorf("marshal commit: invalid tree hash %q", c.TreeHash)
	}
	if len(c.Parents) > 2 {
		return nil, fmt.Errorf("marshal commit: too many parents (%d)", len(c.Parents))
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", string(c.TreeHash))
	for _, p := range c.Parents {
		if !ValidHash(string(p)) {
			return nil, fmt.Errorf("marshal commit: invalid parent hash %q", p)
		}
		fmt.Fprintf(&buf, "parent %s\n", string(p))
	}
	fmt.Fprintf(&buf, "author %s %d\n", c.Author, c.Timestamp)
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	if !strings.HasSuffix(c.Message, "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// UnmarshalCommit parses a CommitObj from its serialized form.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: missing header/message separator")
	}
	header := string(data[:idx])
	message := string(data[idx+2:])
	if !strings.HasSuffix(message, "\n") {
		return nil, fmt.Errorf("unmarshal commit: message missing trailing newline")
	}
	message = strings.TrimSuffix(message, "\n")

	c := &CommitObj{Message: message}
	seenTree := false
	seenAuthor := false
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: malformed header line %q", line)
		}
		switch key {
		case "tree":
			if seenTree {
				return nil, fmt.Errorf("unmarshal commit: duplicate tree header")
			}
			if !ValidHash(val) {
				return nil, fmt.Errorf("unmarshal commit: bad tree hash %q", val)
			}
			c.TreeHash = Hash(val)
			seenTree = true
		case "parent":
			if !ValidHash(val) {
				return nil, fmt.Errorf("unmarshal commit: bad parent hash %q", val)
			}
			if len(c.Parents) == 2 {
				return nil, fmt.Errorf("unmarshal commit: more than two parents")
			}
			c.Parents = append(c.Parents, Hash(val))
		case "author":
			if seenAuthor {
				return nil, fmt.Errorf("unmarshal commit: duplicate author header")
			}
			// The author name may contain spaces; the timestamp is
			// the final space-separated field.
			cut := strings.LastIndexByte(val, ' ')
			if cut < 0 {
				return nil, fmt.Errorf("unmarshal commit: malformed author line %q", line)
			}
			ts, err := strconv.ParseInt(val[cut+1:], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: bad timestamp %q: %w", val[cut+1:], err)
			}
			c.Author = val[:cut]
			c.Timestamp = ts
			seenAuthor = true
		default:
			return nil, fmt.Errorf("unmarshal commit: unknown header key %q", key)
		}
	}
	if !seenTree {
		return nil, fmt.Errorf("unmarshal commit: missing tree header")
	}
	if !seenAuthor {
		return nil, fmt.Errorf("unmarshal commit: missing author header")
	}
	return c, nil
}
