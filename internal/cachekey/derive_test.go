package cachekey

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plexcord/plexcord/model"
)

func conv(turns ...model.Turn) model.Conversation {
	return model.Conversation(turns)
}

func TestDeriveDeterministic(t *testing.T) {
	c := conv(
		model.Turn{Role: model.RoleSystem, Content: "be brief"},
		model.Turn{Role: model.RoleUser, Content: "what is Go?"},
	)
	require.Equal(t, Derive(c), Derive(c))
	require.Len(t, Derive(c), 64)
}

func TestDeriveEmptyConversation(t *testing.T) {
	require.Equal(t, "", Derive(nil))
	require.Equal(t, "", Derive(model.Conversation{}))
}

func TestDeriveSensitivity(t *testing.T) {
	base := conv(
		model.Turn{Role: model.RoleUser, Content: "hello"},
		model.Turn{Role: model.RoleAssistant, Content: "hi"},
	)

	contentChanged := conv(
		model.Turn{Role: model.RoleUser, Content: "hello!"},
		model.Turn{Role: model.RoleAssistant, Content: "hi"},
	)
	roleChanged := conv(
		model.Turn{Role: model.RoleSystem, Content: "hello"},
		model.Turn{Role: model.RoleAssistant, Content: "hi"},
	)
	reordered := conv(
		model.Turn{Role: model.RoleAssistant, Content: "hi"},
		model.Turn{Role: model.RoleUser, Content: "hello"},
	)

	k := Derive(base)
	require.NotEqual(t, k, Derive(contentChanged))
	require.NotEqual(t, k, Derive(roleChanged))
	require.NotEqual(t, k, Derive(reordered))
}

func TestDeriveFieldBoundaries(t *testing.T) {
	// Without length prefixes these would concatenate identically.
	a := conv(model.Turn{Role: "ab", Content: "c"})
	b := conv(model.Turn{Role: "a", Content: "bc"})
	require.NotEqual(t, Derive(a), Derive(b))

	one := conv(model.Turn{Role: "user", Content: "xy"})
	two := conv(
		model.Turn{Role: "user", Content: "x"},
		model.Turn{Role: "", Content: "y"},
	)
	require.NotEqual(t, Derive(one), Derive(two))
}
