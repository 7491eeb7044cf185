package mapper

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, doc string) *Mapper {
	t.Helper()
	m, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	return m
}

func TestConfigurationResolution(t *testing.T) {
	cfg := NewConfiguration()
	require.NoError(t, cfg.AddMapper(mustParse(t, `<mapper namespace="user"><select id="find">SELECT 1</select></mapper>`)))
	require.NoError(t, cfg.AddMapper(mustParse(t, `<mapper namespace="order"><select id="find">SELECT 2</select><select id="count">SELECT 3</select></mapper>`)))

	st, err := cfg.Statement("user.find")
	require.NoError(t, err)
	assert.Equal(t, "user", st.Namespace)

	// Bare ids resolve only while unambiguous.
	st, err = cfg.Statement("count")
	require.NoError(t, err)
	assert.Equal(t, "order.count", st.FullID())

	_, err = cfg.Statement("find")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")

	_, err = cfg.Statement("user.missing")
	assert.Error(t, err)
}

func TestConfigurationRejectsDuplicates(t *testing.T) {
	cfg := NewConfiguration()
	require.NoError(t, cfg.AddMapper(mustParse(t, `<mapper namespace="user"><select id="find">SELECT 1</select></mapper>`)))

	err := cfg.AddMapper(mustParse(t, `<mapper namespace="user"><select id="find">SELECT 1 again</select></mapper>`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user.find")
}

func TestBindParamType(t *testing.T) {
	type findArgs struct{ Name string }

	cfg := NewConfiguration()
	require.NoError(t, cfg.AddMapper(mustParse(t, `<mapper namespace="user"><select id="find">SELECT 1</select></mapper>`)))

	require.NoError(t, cfg.BindParamType("user.find", findArgs{}))
	st, err := cfg.Statement("user.find")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(findArgs{}), st.ParamType)

	require.NoError(t, cfg.BindParamType("user.find", reflect.TypeOf("")))
	assert.Equal(t, reflect.TypeOf(""), st.ParamType)

	assert.Error(t, cfg.BindParamType("missing", findArgs{}))
}
