package packages

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ortelius/guac-vex/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromPURL(t *testing.T) {
	spec, err := FromPURL("pkg:maven/org.apache.logging.log4j/log4j-core@2.13.0")
	require.NoError(t, err)

	assert.Equal(t, "maven", spec.Type)
	assert.Equal(t, "org.apache.logging.log4j", *spec.Namespace)
	assert.Equal(t, "log4j-core", spec.Name)
	assert.Equal(t, "2.13.0", *spec.Version)
	assert.Nil(t, spec.Subpath)
	assert.Nil(t, spec.Qualifiers)
}

func TestFromPURL_NullsOnTheWire(t *testing.T) {
	spec, err := FromPURL("pkg:npm/lodash")
	require.NoError(t, err)

	raw, err := json.Marshal(spec)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"npm","namespace":null,"name":"lodash","version":null,"qualifiers":null,"subpath":null}`, string(raw))
}

func TestFromPURL_Qualifiers(t *testing.T) {
	spec, err := FromPURL("pkg:maven/a/b@1?k=v")
	require.NoError(t, err)
	assert.Equal(t, []PackageQualifierInputSpec{{Key: "k", Value: "v"}}, spec.Qualifiers)
}

func TestFromPURL_Invalid(t *testing.T) {
	_, err := FromPURL("not-a-purl")

	var perr *util.ParseError
	assert.True(t, errors.As(err, &perr))
}
