package domain_test

import (
	"testing"

	"github.com/nssa-network/nssa-wallet/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func newOwnedNote(t *testing.T, acc *domain.Account, value uint64) (domain.Commitment, domain.Note) {
	note, err := domain.NewNote(domain.NewAmount(value))
	require.NoError(t, err)
	return domain.NewCommitment(acc.NullifierPublicKey, note), *note
}

func TestAccountNotes(t *testing.T) {
	acc := domain.NewPrivateAccount(0, domain.NullifierPublicKey{1}, domain.ViewingPublicKey{2})
	require.True(t, acc.IsPrivate())
	require.False(t, acc.Initialized)

	c1, n1 := newOwnedNote(t, acc, 30)
	c2, n2 := newOwnedNote(t, acc, 50)

	t.Run("pending note counts once", func(t *testing.T) {
		changed, err := acc.AddNote(c1, n1, false, 0)
		require.NoError(t, err)
		require.True(t, changed)
		require.True(t, acc.Initialized)
		require.Equal(t, "30", acc.Balance.String())

		// the block including it only confirms it
		changed, err = acc.AddNote(c1, n1, true, 3)
		require.NoError(t, err)
		require.True(t, changed)
		require.Equal(t, "30", acc.Balance.String())

		changed, err = acc.AddNote(c1, n1, true, 3)
		require.NoError(t, err)
		require.False(t, changed)
		require.Len(t, acc.Notes, 1)
	})

	t.Run("selection", func(t *testing.T) {
		_, err := acc.AddNote(c2, n2, false, 0)
		require.NoError(t, err)
		require.Equal(t, "80", acc.Balance.String())

		// pending notes are not spendable
		_, _, err = acc.SelectNotes(domain.NewAmount(40), nil)
		require.ErrorIs(t, err, domain.ErrInsufficientSpendableNotes)

		_, err = acc.AddNote(c2, n2, true, 4)
		require.NoError(t, err)

		selected, total, err := acc.SelectNotes(domain.NewAmount(40), nil)
		require.NoError(t, err)
		require.Len(t, selected, 1)
		require.Equal(t, c2, selected[0].Commitment)
		require.Equal(t, "50", total.String())

		selected, total, err = acc.SelectNotes(domain.NewAmount(60), nil)
		require.NoError(t, err)
		require.Len(t, selected, 2)
		require.Equal(t, "80", total.String())

		skip := func(c domain.Commitment) bool { return c == c2 }
		selected, _, err = acc.SelectNotes(domain.NewAmount(10), skip)
		require.NoError(t, err)
		require.Equal(t, c1, selected[0].Commitment)

		_, _, err = acc.SelectNotes(domain.NewAmount(81), nil)
		require.ErrorIs(t, err, domain.ErrInsufficientSpendableNotes)
	})

	t.Run("spending is idempotent", func(t *testing.T) {
		changed, err := acc.MarkSpent(c2, 0)
		require.NoError(t, err)
		require.True(t, changed)
		require.Equal(t, "30", acc.Balance.String())

		changed, err = acc.MarkSpent(c2, 5)
		require.NoError(t, err)
		require.True(t, changed)
		require.Equal(t, "30", acc.Balance.String())

		changed, err = acc.MarkSpent(c2, 5)
		require.NoError(t, err)
		require.False(t, changed)

		_, err = acc.MarkSpent(domain.Commitment{0xee}, 5)
		require.ErrorIs(t, err, domain.ErrNoteNotFound)
	})

	t.Run("copy", func(t *testing.T) {
		cp := acc.Copy()
		cp.Notes[0].Spent = true
		require.False(t, acc.Notes[0].Spent)
	})

	t.Run("public accounts hold no notes", func(t *testing.T) {
		pub := domain.NewPublicAccount(0, domain.PublicKey{1})
		_, err := pub.AddNote(c1, n1, true, 1)
		require.ErrorIs(t, err, domain.ErrAccountNotPrivate)
	})
}

func TestParseAccountKind(t *testing.T) {
	kind, err := domain.ParseAccountKind("Private")
	require.NoError(t, err)
	require.Equal(t, domain.AccountKindPrivate, kind)

	_, err = domain.ParseAccountKind("shielded")
	require.ErrorIs(t, err, domain.ErrUnknownAccountKind)
}
