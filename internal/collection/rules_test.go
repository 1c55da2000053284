package collection

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestApplyDefaultSubstitution(t *testing.T) {
	rules := []Rule{Type(TypeArray), Default([]string{})}

	got, err := Apply("tags", nil, rules)
	require.NoError(t, err)
	require.Equal(t, []string{}, got)

	got, err = Apply("tags", []string{"a"}, rules)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, got)
}

func TestApplyDefaultIsCopied(t *testing.T) {
	def := []string{"x"}
	rules := []Rule{Default(def), Type(TypeArray)}

	got, err := Apply("tags", nil, rules)
	require.NoError(t, err)
	got.([]string)[0] = "changed"
	require.Equal(t, "x", def[0])
}

func TestApplyRequired(t *testing.T) {
	rules := []Rule{Type(TypeString), Required()}

	for _, v := range []any{nil, "", "   "} {
		_, err := Apply("name", v, rules)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "value %q should fail", v)
		require.Equal(t, "name", verr.Attribute)
	}

	got, err := Apply("name", "news", rules)
	require.NoError(t, err)
	require.Equal(t, "news", got)
}

func TestApplyRequiredEmptyArray(t *testing.T) {
	_, err := Apply("items", []int{}, []Rule{Required()})
	require.Error(t, err)
}

func TestApplyTypeMismatch(t *testing.T) {
	_, err := Apply("name", 42, []Rule{Type(TypeString)})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, RuleType, verr.Rule)

	_, err = Apply("subs", "not-a-list", []Rule{Type(TypeArray)})
	require.Error(t, err)

	_, err = Apply("n", 3.5, []Rule{Type(TypeNumber)})
	require.NoError(t, err)

	_, err = Apply("ok", true, []Rule{Type(TypeBoolean)})
	require.NoError(t, err)

	_, err = Apply("meta", map[string]string{}, []Rule{Type(TypeObject)})
	require.NoError(t, err)
}

func TestApplyDate(t *testing.T) {
	rules := []Rule{Type(TypeDate)}

	_, err := Apply("at", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), rules)
	require.NoError(t, err)
	_, err = Apply("at", "2024-02-29", rules)
	require.NoError(t, err)
	_, err = Apply("at", "2024-02-29T10:00:00Z", rules)
	require.NoError(t, err)

	_, err = Apply("at", "2023-02-29", rules)
	require.Error(t, err)
	_, err = Apply("at", time.Time{}, rules)
	require.Error(t, err)
}

func TestApplyTransformsFollowDeclarationOrder(t *testing.T) {
	got, err := Apply("code", "  AbC  ", []Rule{Type(TypeString), Trim(), ToLower()})
	require.NoError(t, err)
	require.Equal(t, "abc", got)

	got, err = Apply("code", "AbC", []Rule{ToLower(), ToUpper()})
	require.NoError(t, err)
	require.Equal(t, "ABC", got)

	got, err = Apply("code", "AbC", []Rule{ToUpper(), ToLower()})
	require.NoError(t, err)
	require.Equal(t, "abc", got)
}

func TestApplyRequiredBeforeTrimSeesRawValue(t *testing.T) {
	// required runs before trim, so the padded value passes and is then trimmed
	got, err := Apply("name", " a ", []Rule{Required(), Trim()})
	require.NoError(t, err)
	require.Equal(t, "a", got)

	// trim first leaves a blank string that required rejects
	_, err = Apply("name", "   ", []Rule{Trim(), Required()})
	require.Error(t, err)
}

func TestApplyTransformOnNonString(t *testing.T) {
	_, err := Apply("n", 12, []Rule{Trim()})
	require.Error(t, err)
}

func TestApplyDisabledFlags(t *testing.T) {
	rules := []Rule{{Kind: RuleRequired, Value: false}, {Kind: RuleToUpper, Value: false}}
	got, err := Apply("note", "", rules)
	require.NoError(t, err)
	require.Equal(t, "", got)
}

func TestCloneValueCopiesNestedContainers(t *testing.T) {
	src := map[string]any{
		"list": []any{map[string]any{"x": 1}, "s"},
		"tags": []string{"a"},
	}
	cp := cloneValue(src).(map[string]any)

	cp["list"].([]any)[0].(map[string]any)["x"] = 2
	cp["tags"].([]string)[0] = "b"
	cp["extra"] = true

	require.Equal(t, 1, src["list"].([]any)[0].(map[string]any)["x"])
	require.Equal(t, []string{"a"}, src["tags"])
	require.NotContains(t, src, "extra")
	require.Nil(t, cloneValue(nil))
	require.Equal(t, 3, cloneValue(3))
}
