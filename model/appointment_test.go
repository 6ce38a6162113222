package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTone(t *testing.T) {
	tests := []struct {
		status string
		want   Tone
	}{
		{"Completed", ToneSuccess},
		{"surgery completed", ToneSuccess},
		{"pending", ToneWarning},
		{"Assigned", ToneWarning},
		{"Scheduled", ToneWarning},
		{"CANCELLED", ToneDanger},
		{"postponed", ToneNeutral},
		{"", ToneNeutral},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusTone(tt.status), tt.status)
	}
}

func TestOTAppointment_DecodesBackendShape(t *testing.T) {
	raw := `{"id": 12, "caseType": "Neurology", "otNumber": "OT-2", "nurses": ["A", "B"],
		"reports": [{"id": 3, "fileName": "mri.pdf", "fileUrl": "/files/mri.pdf"}],
		"otRoomDetails": {"floor": 2}}`
	var a OTAppointment
	assert.NoError(t, json.Unmarshal([]byte(raw), &a))
	assert.Equal(t, FlexString("12"), a.ID)
	assert.Equal(t, []string{"A", "B"}, a.Nurses)
	assert.Equal(t, "mri.pdf", a.Reports[0].FileName)
	assert.JSONEq(t, `{"floor": 2}`, string(a.OTRoomDetails))
}

func TestFindOT(t *testing.T) {
	list := []OTAppointment{{ID: "1"}, {ID: "2", OTNumber: "OT-9"}}
	a, ok := FindOT(list, "2")
	assert.True(t, ok)
	assert.Equal(t, "OT-9", a.OTNumber)
	_, ok = FindOT(list, "3")
	assert.False(t, ok)
}

func TestFlexString(t *testing.T) {
	var v struct {
		A FlexString `json:"a"`
		B FlexString `json:"b"`
		C FlexString `json:"c"`
	}
	assert.NoError(t, json.Unmarshal([]byte(`{"a": 7, "b": "x", "c": null}`), &v))
	assert.Equal(t, FlexString("7"), v.A)
	assert.Equal(t, FlexString("x"), v.B)
	assert.Equal(t, FlexString(""), v.C)
	assert.Error(t, json.Unmarshal([]byte(`{"a": true}`), &v))
}

func TestAccountSessionUser(t *testing.T) {
	var nilAccount *Account
	_, err := nilAccount.SessionUser()
	assert.ErrorIs(t, err, ErrInvalidLoginReply)

	_, err = (&Account{ID: "  ", Email: "x@example.com"}).SessionUser()
	assert.ErrorIs(t, err, ErrInvalidLoginReply)

	u, err := (&Account{ID: "5", Email: "x@example.com", Role: RoleNurse}).SessionUser()
	assert.NoError(t, err)
	assert.Equal(t, "", u.Image)
	assert.Equal(t, RoleNurse, u.Role)
}
