package model

import "testing"

func TestVisibilityValid(t *testing.T) {
	for _, v := range []Visibility{VisibilityPublic, VisibilityPrivate, VisibilityUnlisted} {
		if !v.Valid() {
			t.Errorf("%q should be valid", v)
		}
	}
	for _, v := range []Visibility{"", "friends", "PUBLIC"} {
		if v.Valid() {
			t.Errorf("%q should not be valid", v)
		}
	}
}

func TestListCanView(t *testing.T) {
	cases := []struct {
		name       string
		visibility Visibility
		userID     int64
		want       bool
	}{
		{"public for anyone", VisibilityPublic, 2, true},
		{"public for owner", VisibilityPublic, 1, true},
		{"unlisted for anyone", VisibilityUnlisted, 2, true},
		{"private for owner", VisibilityPrivate, 1, true},
		{"private for stranger", VisibilityPrivate, 2, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := &List{OwnerID: 1, Visibility: tc.visibility}
			if got := l.CanView(tc.userID); got != tc.want {
				t.Errorf("CanView(%d) = %v, want %v", tc.userID, got, tc.want)
			}
		})
	}
}

func TestListCanEdit(t *testing.T) {
	l := &List{OwnerID: 1, Visibility: VisibilityPublic}
	if !l.CanEdit(1) {
		t.Error("owner should be able to edit")
	}
	if l.CanEdit(2) {
		t.Error("non-owner should not be able to edit")
	}
}
