package domain

import (
	"fmt"
	"sort"
	"strings"
)

// AccountKind ...
type AccountKind uint8

const (
	AccountKindPublic AccountKind = iota + 1
	AccountKindPrivate
)

func (k AccountKind) String() string {
	switch k {
	case AccountKindPublic:
		return "public"
	case AccountKindPrivate:
		return "private"
	default:
		return "unknown"
	}
}

// ParseAccountKind accepts "public" and "private", case insensitive.
func ParseAccountKind(s string) (AccountKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "public":
		return AccountKindPublic, nil
	case "private":
		return AccountKindPrivate, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAccountKind, s)
	}
}

// OwnedNote is a note of a private account together with what the wallet
// knows about its lifecycle.
//
// A note is pending from the moment the wallet submits the transaction
// creating it until a scanned block includes its commitment. A note is spent
// as soon as the wallet submits a transaction revealing its nullifier, or a
// scanned block reveals it.
type OwnedNote struct {
	Commitment   Commitment
	Note         Note
	Confirmed    bool
	BlockId      uint64
	Spent        bool
	SpentInBlock uint64
}

// Account is the wallet record of an owned account. Secret keys are never
// part of it: they are derived from the seed at Index when needed.
type Account struct {
	AccountId AccountId
	Kind      AccountKind
	Index     uint32
	Sequence  uint64
	Label     string
	CreatedAt int64

	PublicKey PublicKey

	NullifierPublicKey NullifierPublicKey
	ViewingPublicKey   ViewingPublicKey
	Initialized        bool
	Notes              []OwnedNote
	Balance            Amount
}

// NewPublicAccount ...
func NewPublicAccount(index uint32, pubkey PublicKey) *Account {
	return &Account{
		AccountId: NewPublicAccountId(pubkey),
		Kind:      AccountKindPublic,
		Index:     index,
		PublicKey: pubkey,
	}
}

// NewPrivateAccount ...
func NewPrivateAccount(
	index uint32, npk NullifierPublicKey, vpk ViewingPublicKey,
) *Account {
	return &Account{
		AccountId:          NewPrivateAccountId(npk),
		Kind:               AccountKindPrivate,
		Index:              index,
		NullifierPublicKey: npk,
		ViewingPublicKey:   vpk,
	}
}

func (a *Account) IsPrivate() bool {
	return a.Kind == AccountKindPrivate
}

func (a *Account) IsPublic() bool {
	return a.Kind == AccountKindPublic
}

// FindNote returns the position of the note with the given commitment or
// -1.
func (a *Account) FindNote(commitment Commitment) int {
	for i, n := range a.Notes {
		if n.Commitment == commitment {
			return i
		}
	}
	return -1
}

// AddNote records a note of the account. Adding a note already known only
// promotes it from pending to confirmed, so a note seen twice never counts
// twice. It returns whether the account changed.
func (a *Account) AddNote(
	commitment Commitment, note Note, confirmed bool, blockId uint64,
) (bool, error) {
	if !a.IsPrivate() {
		return false, ErrAccountNotPrivate
	}
	if i := a.FindNote(commitment); i >= 0 {
		if !confirmed || a.Notes[i].Confirmed {
			return false, nil
		}
		a.Notes[i].Confirmed = true
		a.Notes[i].BlockId = blockId
		return true, nil
	}

	a.Notes = append(a.Notes, OwnedNote{
		Commitment: commitment,
		Note:       note,
		Confirmed:  confirmed,
		BlockId:    blockId,
	})
	a.Initialized = true
	return true, a.RecomputeBalance()
}

// MarkSpent flags the note as spent. A blockId of 0 means the spending
// transaction was submitted but not yet seen in a block. Spending a note
// twice is a no-op. It returns whether the account changed.
func (a *Account) MarkSpent(commitment Commitment, blockId uint64) (bool, error) {
	i := a.FindNote(commitment)
	if i < 0 {
		return false, ErrNoteNotFound
	}
	note := &a.Notes[i]
	if note.Spent {
		if blockId > 0 && note.SpentInBlock == 0 {
			note.SpentInBlock = blockId
			return true, nil
		}
		return false, nil
	}
	note.Spent = true
	note.SpentInBlock = blockId
	return true, a.RecomputeBalance()
}

// UnspentNotes returns notes not spent yet, pending ones included.
func (a *Account) UnspentNotes() []OwnedNote {
	notes := make([]OwnedNote, 0, len(a.Notes))
	for _, n := range a.Notes {
		if !n.Spent {
			notes = append(notes, n)
		}
	}
	return notes
}

// SpendableNotes returns confirmed unspent notes not excluded by skip,
// largest first.
func (a *Account) SpendableNotes(skip func(Commitment) bool) []OwnedNote {
	notes := make([]OwnedNote, 0, len(a.Notes))
	for _, n := range a.Notes {
		if n.Spent || !n.Confirmed {
			continue
		}
		if skip != nil && skip(n.Commitment) {
			continue
		}
		notes = append(notes, n)
	}
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Note.Balance.Cmp(notes[j].Note.Balance) > 0
	})
	return notes
}

// SelectNotes picks spendable notes, largest first, until their sum covers
// amount. It returns the selection and its total.
func (a *Account) SelectNotes(
	amount Amount, skip func(Commitment) bool,
) ([]OwnedNote, Amount, error) {
	var total Amount
	selected := make([]OwnedNote, 0)
	for _, n := range a.SpendableNotes(skip) {
		if total.Cmp(amount) >= 0 && len(selected) > 0 {
			break
		}
		var err error
		if total, err = total.Add(n.Note.Balance); err != nil {
			return nil, Amount{}, err
		}
		selected = append(selected, n)
	}
	if len(selected) <= 0 || total.Cmp(amount) < 0 {
		return nil, Amount{}, ErrInsufficientSpendableNotes
	}
	return selected, total, nil
}

// RecomputeBalance sets Balance to the sum of the unspent notes.
func (a *Account) RecomputeBalance() error {
	if !a.IsPrivate() {
		return nil
	}
	var total Amount
	for _, n := range a.UnspentNotes() {
		var err error
		if total, err = total.Add(n.Note.Balance); err != nil {
			return err
		}
	}
	a.Balance = total
	return nil
}

// Copy returns a deep copy of the account.
func (a *Account) Copy() *Account {
	c := *a
	c.Notes = make([]OwnedNote, len(a.Notes))
	for i, n := range a.Notes {
		c.Notes[i] = n
		if n.Note.Data != nil {
			c.Notes[i].Note.Data = append([]byte{}, n.Note.Data...)
		}
	}
	return &c
}
