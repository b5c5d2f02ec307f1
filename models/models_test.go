package models

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"AR":             "ar",
		"Marker Less":    "marker-less",
		"  Face_Filter ": "face-filter",
		"C++ & Go!":      "c-go",
		"---":            "",
		"":               "",
		"3D Models":      "3d-models",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}
}

func TestProjectVisibility(t *testing.T) {
	owner := User{ID: uuid.New(), Role: RoleUser}
	admin := User{ID: uuid.New(), Role: RoleAdmin}
	other := User{ID: uuid.New(), Role: RoleUser}

	public := Project{OwnerID: owner.ID, Visibility: VisibilityPublic}
	unlisted := Project{OwnerID: owner.ID, Visibility: VisibilityUnlisted}
	private := Project{OwnerID: owner.ID, Visibility: VisibilityPrivate}

	assert.True(t, public.VisibleTo(nil))
	assert.True(t, unlisted.VisibleTo(nil))
	assert.False(t, private.VisibleTo(nil))
	assert.False(t, private.VisibleTo(&other))
	assert.True(t, private.VisibleTo(&owner))
	assert.True(t, private.VisibleTo(&admin))

	assert.False(t, public.EditableBy(nil))
	assert.False(t, public.EditableBy(&other))
	assert.True(t, public.EditableBy(&owner))
	assert.True(t, public.EditableBy(&admin))
}

func TestValidVisibility(t *testing.T) {
	assert.True(t, ValidVisibility(VisibilityPublic))
	assert.True(t, ValidVisibility(VisibilityUnlisted))
	assert.True(t, ValidVisibility(VisibilityPrivate))
	assert.False(t, ValidVisibility("public"))
	assert.False(t, ValidVisibility(""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "abcde", Truncate("abcdefgh", 5))
	assert.Equal(t, "", Truncate("", 5))
}

func TestTruncateKeepsValidUTF8(t *testing.T) {
	// "é" is 2 bytes; an odd cap would land mid-rune if truncation were
	// byte-blind.
	s := strings.Repeat("é", 130)
	out := Truncate(s, 255)
	assert.True(t, utf8.ValidString(out))
	assert.LessOrEqual(t, len(out), 255)
	assert.Equal(t, 254, len(out))

	out = Truncate("日本語テキスト", 7)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "日本", out)

	// A cap smaller than the first rune yields the empty string, never a
	// partial byte sequence.
	assert.Equal(t, "", Truncate("日本語", 2))
}

func TestDecodeEventProps(t *testing.T) {
	projectID := uuid.New()

	props, err := DecodeEventProps(EventPageView, json.RawMessage(`{"path":"/browse"}`))
	require.NoError(t, err)
	pv, ok := props.(*PageViewProps)
	require.True(t, ok)
	assert.Equal(t, "/browse", pv.Path)

	props, err = DecodeEventProps(EventProjectInteraction,
		json.RawMessage(`{"projectId":"`+projectID.String()+`","action":"view"}`))
	require.NoError(t, err)
	pi, ok := props.(*ProjectInteractionProps)
	require.True(t, ok)
	assert.Equal(t, projectID, pi.ProjectID)
	assert.Equal(t, "view", pi.Action)

	props, err = DecodeEventProps(EventFileUpload,
		json.RawMessage(`{"fileName":"scene.glb","fileSize":1024,"fileType":"model/gltf-binary","success":true}`))
	require.NoError(t, err)
	fu, ok := props.(*FileUploadProps)
	require.True(t, ok)
	assert.Equal(t, int64(1024), fu.SizeBytes)
	assert.True(t, fu.Success)
}

func TestDecodeEventPropsUnknownName(t *testing.T) {
	props, err := DecodeEventProps("custom_event", json.RawMessage(`{"whatever":1}`))
	require.NoError(t, err)
	assert.Nil(t, props)
}

func TestDecodeEventPropsEmptyPayload(t *testing.T) {
	props, err := DecodeEventProps(EventPageView, nil)
	require.NoError(t, err)
	pv, ok := props.(*PageViewProps)
	require.True(t, ok)
	assert.Equal(t, "", pv.Path)
}

func TestDecodeEventPropsMalformed(t *testing.T) {
	_, err := DecodeEventProps(EventSearch, json.RawMessage(`{"query":`))
	assert.Error(t, err)
}
