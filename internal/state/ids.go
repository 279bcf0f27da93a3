package state

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
	"time"
)

const boardCodeLen = 8

var idEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32 (lowercase, no padding).
// 8 chars base32 ~= 40 bits of space.
func newRandomID(prefix string) (string, error) {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return prefix + "-" + strings.ToLower(idEncoding.EncodeToString(b[:])), nil
}

func (s State) idExists(id string) bool {
	for _, u := range s.Users {
		if u.ID == id {
			return true
		}
	}
	for _, t := range s.Tasks {
		if t.ID == id {
			return true
		}
		for _, c := range t.Comments {
			if c.ID == id {
				return true
			}
		}
		for _, a := range t.Attachments {
			if a.ID == id {
				return true
			}
		}
		for _, v := range t.VoiceMessages {
			if v.ID == id {
				return true
			}
		}
	}
	for _, b := range s.Boards {
		if b.ID == id {
			return true
		}
	}
	for _, n := range s.Notifications {
		if n.ID == id {
			return true
		}
	}
	return false
}

// NextID returns an id with the given prefix (user, task, board, ntf, cmt, att, voice)
// that does not collide with any entity in s.
func (s State) NextID(prefix string) string {
	for i := 0; i < 10; i++ {
		id, err := newRandomID(prefix)
		if err != nil {
			break
		}
		if !s.idExists(id) {
			return id
		}
	}
	// crypto/rand failure or repeated collisions.
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// NewBoardCode returns an 8-character uppercase join code unique among s.Boards.
func (s State) NewBoardCode() string {
	for {
		var b [5]byte
		if _, err := rand.Read(b[:]); err != nil {
			code := strings.ToUpper(fmt.Sprintf("%x", time.Now().UnixNano()))
			return code[len(code)-boardCodeLen:]
		}
		code := idEncoding.EncodeToString(b[:])[:boardCodeLen]
		if _, taken := s.FindBoardByCode(code); !taken {
			return code
		}
	}
}
