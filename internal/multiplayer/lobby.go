package multiplayer

import (
	"crypto/rand"
	"io"
	"strings"
	"time"
)

// codeAlphabet leaves out I, O, 0 and 1 so codes survive being read aloud.
// Its 32 symbols map a random byte without bias.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// JoinCodeLen is the length of a lobby code.
const JoinCodeLen = 6

// Lobby is a hosted co-op game waiting for its partner.
type Lobby struct {
	Code      string
	GameID    string
	Host      SessionHandle
	Joiner    SessionHandle
	CreatedAt time.Time
}

// lobbyBook indexes open lobbies by code and by member session. It is not
// safe for concurrent use; the coordinator guards it.
type lobbyBook struct {
	byCode    map[string]*Lobby
	bySession map[SessionID]string
}

func newLobbyBook() lobbyBook {
	return lobbyBook{
		byCode:    make(map[string]*Lobby),
		bySession: make(map[SessionID]string),
	}
}

// open hosts a new lobby under a fresh code.
func (b lobbyBook) open(host SessionHandle, gameID string, now time.Time) *Lobby {
	code := generateJoinCode()
	for b.byCode[code] != nil {
		code = generateJoinCode()
	}
	l := &Lobby{Code: code, GameID: gameID, Host: host, CreatedAt: now}
	b.byCode[code] = l
	b.bySession[host.ID()] = code
	return l
}

func (b lobbyBook) find(code string) (*Lobby, bool) {
	l, ok := b.byCode[NormalizeJoinCode(code)]
	return l, ok
}

// of returns the lobby id belongs to.
func (b lobbyBook) of(id SessionID) (*Lobby, bool) {
	code, ok := b.bySession[id]
	if !ok {
		return nil, false
	}
	return b.find(code)
}

func (b lobbyBook) seat(l *Lobby, joiner SessionHandle) {
	l.Joiner = joiner
	b.bySession[joiner.ID()] = l.Code
}

func (b lobbyBook) unseat(l *Lobby) {
	if l.Joiner != nil {
		delete(b.bySession, l.Joiner.ID())
		l.Joiner = nil
	}
}

// close removes l and both of its members.
func (b lobbyBook) close(l *Lobby) {
	b.unseat(l)
	delete(b.bySession, l.Host.ID())
	delete(b.byCode, l.Code)
}

// expired returns the unjoined lobbies older than ttl.
func (b lobbyBook) expired(now time.Time, ttl time.Duration) []*Lobby {
	var out []*Lobby
	for _, l := range b.byCode {
		if l.Joiner == nil && now.Sub(l.CreatedAt) > ttl {
			out = append(out, l)
		}
	}
	return out
}

func (b lobbyBook) len() int {
	return len(b.byCode)
}

// NormalizeJoinCode upper-cases a typed code and drops surrounding space.
func NormalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidJoinCodeChar reports whether r can appear in a join code, in
// either case.
func ValidJoinCodeChar(r rune) bool {
	return strings.ContainsRune(codeAlphabet, r) || strings.ContainsRune(strings.ToLower(codeAlphabet), r)
}

func generateJoinCode() string {
	code, err := newJoinCode(rand.Reader)
	if err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return code
}

// newJoinCode draws JoinCodeLen symbols from r.
func newJoinCode(r io.Reader) (string, error) {
	buf := make([]byte, JoinCodeLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	for i, c := range buf {
		buf[i] = codeAlphabet[int(c)%len(codeAlphabet)]
	}
	return string(buf), nil
}
