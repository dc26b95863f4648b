package technique

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/ashaderc/shaderc/core"
)

func TestParse_TwoTechniques(t *testing.T) {
	assert := assert.New(t)

	src := []byte(`
//T: Basic
//E: vertex VSMain
//E: fragment PSMain
//D: USE_FOG 1
//M: pass opaque

float4 VSMain() : SV_POSITION { return float4(0, 0, 0, 1); }

//T: Skinned
//E: vertex VSSkinned
//E: fragment PSMain
//D: SKINNING
`)
	techniques, err := Parse("test.hlsl", src)
	require.NoError(t, err)
	require.Len(t, techniques, 2)

	basic := techniques[0]
	assert.Equal("Basic", basic.Name)
	require.Len(t, basic.EntryPoints, 2)
	assert.Equal(EntryPoint{Kind: StageVertex, Name: "VSMain"}, basic.EntryPoints[0])
	assert.Equal(EntryPoint{Kind: StageFragment, Name: "PSMain"}, basic.EntryPoints[1])
	assert.Equal("1", basic.Defines["USE_FOG"])
	assert.Equal([]string{"USE_FOG"}, basic.DefineKeys)
	assert.Equal("opaque", basic.Metadata["pass"])
	assert.Equal([]string{"pass"}, basic.MetadataKeys)

	skinned := techniques[1]
	assert.Equal("Skinned", skinned.Name)
	require.Len(t, skinned.EntryPoints, 2)
	assert.Equal("VSSkinned", skinned.EntryPoints[0].Name)
	assert.Equal("", skinned.Defines["SKINNING"])
}

func TestParse_DuplicateTechniqueName(t *testing.T) {
	src := []byte(`
//T: Basic
//E: vertex VSMain
//T: Basic
//E: vertex VSMain
`)
	_, err := Parse("test.hlsl", src)
	var parseErr *core.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Contains(t, parseErr.Msg, "declared twice")
	assert.Equal(t, 4, parseErr.Line)
}

func TestParse_UnknownStageKeyword(t *testing.T) {
	src := []byte(`
//T: Basic
//E: geometry GSMain
`)
	_, err := Parse("test.hlsl", src)
	var parseErr *core.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Contains(t, parseErr.Msg, "unknown stage keyword")
}

func TestParse_DirectiveOutsideTechnique(t *testing.T) {
	for _, src := range []string{
		"//E: vertex VSMain\n",
		"//D: FOO 1\n",
		"//M: key value\n",
	} {
		_, err := Parse("test.hlsl", []byte(src))
		var parseErr *core.ParseError
		require.True(t, errors.As(err, &parseErr), "source %q", src)
	}
}

func TestParse_TechniqueWithoutEntryPoints(t *testing.T) {
	src := []byte("//T: Basic\n//D: FOO 1\n")
	_, err := Parse("test.hlsl", src)
	var parseErr *core.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Contains(t, parseErr.Msg, "no entry points")
}

func TestParse_LastKeyWins(t *testing.T) {
	assert := assert.New(t)

	src := []byte(`
//T: Basic
//E: vertex VSMain
//D: QUALITY low
//D: QUALITY high
//M: pass opaque
//M: pass transparent
`)
	techniques, err := Parse("test.hlsl", src)
	require.NoError(t, err)
	require.Len(t, techniques, 1)

	tech := techniques[0]
	assert.Equal("high", tech.Defines["QUALITY"])
	assert.Equal([]string{"QUALITY"}, tech.DefineKeys)
	assert.Equal("transparent", tech.Metadata["pass"])
	assert.Equal([]string{"pass"}, tech.MetadataKeys)
}

func TestParse_OrdinaryCommentsIgnored(t *testing.T) {
	src := []byte(`
// This file has exactly one technique.
//T: Basic
//E: vertex VSMain
// TODO: fix fog banding
//Totally: not a directive
`)
	techniques, err := Parse("test.hlsl", src)
	require.NoError(t, err)
	require.Len(t, techniques, 1)
	assert.Equal(t, "Basic", techniques[0].Name)
}

func TestParse_MalformedDirectives(t *testing.T) {
	for _, src := range []string{
		"//T:\n",
		"//T: Two Words\n//E: vertex VSMain\n",
		"//T: Basic\n//E: vertex\n",
		"//T: Basic\n//E: vertex VSMain extra\n",
		"//T: Basic\n//E: vertex VSMain\n//M: keyonly\n",
	} {
		_, err := Parse("test.hlsl", []byte(src))
		var parseErr *core.ParseError
		require.True(t, errors.As(err, &parseErr), "source %q", src)
	}
}

func TestParse_EmptySourceHasNoTechniques(t *testing.T) {
	techniques, err := Parse("test.hlsl", []byte("float4 f() { return 0; }\n"))
	require.NoError(t, err)
	assert.Empty(t, techniques)
}
