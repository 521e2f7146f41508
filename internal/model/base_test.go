package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringList(t *testing.T) {
	list := NewStringList([]string{" /a.jpg ", "", "/b.mp4"})
	assert.Equal(t, StringList("/a.jpg,/b.mp4"), list)
	assert.Equal(t, "/a.jpg", list.First())
	assert.Equal(t, "", StringList("").First())
	assert.Equal(t, []string{}, StringList("").Items())

	raw, err := json.Marshal(struct {
		Media StringList `json:"media"`
	}{list})
	require.NoError(t, err)
	assert.JSONEq(t, `{"media":["/a.jpg","/b.mp4"]}`, string(raw))

	var decoded struct {
		Media StringList `json:"media"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"media":["/x.png"]}`), &decoded))
	assert.Equal(t, StringList("/x.png"), decoded.Media)
}

func TestStatusValid(t *testing.T) {
	assert.True(t, EventCancelled.Valid())
	assert.False(t, EventStatus("DONE").Valid())
	assert.True(t, GroupFilled.Valid())
	assert.False(t, GroupStatus("open").Valid())
	assert.True(t, ReactionHitMeUp.Valid())
	assert.False(t, ReactionType("LIKE").Valid())
}

func TestEventLocation(t *testing.T) {
	e := &Event{State: "Goa", District: "North Goa", Locality: "Vagator"}
	assert.Equal(t, "Vagator, North Goa, Goa", e.Location())
}
