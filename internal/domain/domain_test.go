package domain

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestParseNoteAction(t *testing.T) {
	tests := []struct {
		name     string
		action   NoteAction
		template string
	}{
		{"publish", ActionPublish, ""},
		{"pretty", ActionPublish, ""},
		{"slide", ActionSlide, ""},
		{"download", ActionDownload, ""},
		{"info", ActionInfo, ""},
		{"pdf", ActionPDF, ""},
		{"pdf-NextEvent", ActionPDF, "NextEvent"},
		{"pdf-nexbyte", ActionPDF, "nexbyte"},
		{"pdfx", ActionPDF, ""},
		{"pdfNextEvent", ActionPDF, ""},
		{"pdf-", ActionPDF, ""},
		{"gist", ActionGist, ""},
		{"revision", ActionRevision, ""},
		{"edit", ActionUnknown, ""},
		{"", ActionUnknown, ""},
	}
	for _, tt := range tests {
		a, tmpl := ParseNoteAction(tt.name)
		assert.Equal(t, tt.action, a, tt.name)
		assert.Equal(t, tt.template, tmpl, tt.name)
	}
	assert.Equal(t, "pdf", ActionPDF.String())
}

func TestParsePermission(t *testing.T) {
	assert.Equal(t, PermissionPrivate, ParsePermission("private"))
	assert.Equal(t, PermissionLimited, ParsePermission("limited"))
	assert.Equal(t, PermissionProtected, ParsePermission("protected"))
	assert.Equal(t, PermissionPublic, ParsePermission("public"))
	assert.Equal(t, PermissionPublic, ParsePermission(""))
	assert.Equal(t, PermissionPublic, ParsePermission("editable"))
}

func TestPermissionMatrix(t *testing.T) {
	owner := Requester{UserID: "owner"}
	other := Requester{UserID: "other"}

	cases := []struct {
		perm    Permission
		who     Requester
		ownerID string
		want    bool
	}{
		{PermissionPrivate, owner, "owner", true},
		{PermissionPrivate, other, "owner", false},
		{PermissionPrivate, Anonymous, "owner", false},
		{PermissionPrivate, Anonymous, "", false},
		{PermissionPrivate, other, "", false},
		{PermissionLimited, other, "owner", true},
		{PermissionLimited, Anonymous, "owner", false},
		{PermissionProtected, other, "owner", true},
		{PermissionProtected, Anonymous, "owner", false},
		{PermissionPublic, Anonymous, "owner", true},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.perm.CanView(c.who, c.ownerID), "%s %q %q", c.perm, c.who.UserID, c.ownerID)
	}
}

func TestPermissionProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("anonymous sees only public", prop.ForAll(
		func(stored, ownerID string) bool {
			p := ParsePermission(stored)
			return p.CanView(Anonymous, ownerID) == (p == PermissionPublic)
		},
		gen.OneConstOf("private", "limited", "protected", "public", "", "bogus"),
		gen.AlphaString(),
	))

	properties.Property("owner always sees own note", prop.ForAll(
		func(stored, uid string) bool {
			return ParsePermission(stored).CanView(Requester{UserID: uid}, uid)
		},
		gen.OneConstOf("private", "limited", "protected", "public"),
		gen.Identifier(),
	))

	properties.Property("editing implies viewing", prop.ForAll(
		func(stored string, uid string, ownerID string) bool {
			p := ParsePermission(stored)
			r := Requester{UserID: uid}
			return !p.CanEdit(r, ownerID) || p.CanView(r, ownerID)
		},
		gen.OneConstOf("private", "limited", "protected", "public"),
		gen.OneConstOf("", "owner", "other"),
		gen.OneConstOf("", "owner"),
	))

	properties.TestingRun(t)
}

func TestPermissionCanEdit(t *testing.T) {
	owner := Requester{UserID: "owner"}
	other := Requester{UserID: "other"}

	assert.True(t, PermissionPublic.CanEdit(Anonymous, "owner"))
	assert.True(t, PermissionLimited.CanEdit(other, "owner"))
	assert.False(t, PermissionLimited.CanEdit(Anonymous, "owner"))
	assert.True(t, PermissionProtected.CanEdit(owner, "owner"))
	assert.False(t, PermissionProtected.CanEdit(other, "owner"))
	assert.False(t, PermissionPrivate.CanEdit(other, "owner"))
	assert.False(t, PermissionPrivate.CanEdit(Anonymous, ""))
}

func TestCanonicalToken(t *testing.T) {
	n := &Note{Namespace: "ns", ShortID: "sid"}
	assert.Equal(t, "ns", n.CanonicalToken(SurfaceNote))
	assert.Equal(t, "sid", n.CanonicalToken(SurfacePublish))
	assert.Equal(t, "/s/sid", n.CanonicalPath(SurfacePublish))
	assert.Equal(t, "/p/sid", n.CanonicalPath(SurfaceSlide))
	assert.Equal(t, "/ns", n.CanonicalPath(SurfaceNote))
	assert.True(t, n.IsCanonical("ns", SurfaceNote))
	assert.False(t, n.IsCanonical("sid", SurfaceNote))

	n.Namespace = "a/b+c=="
	assert.Equal(t, "/a%2Fb+c==", n.CanonicalPath(SurfaceNote))
	n.Namespace = "ns"

	n.Alias = "team-notes"
	for _, s := range []Surface{SurfaceNote, SurfacePublish, SurfaceSlide} {
		assert.Equal(t, "team-notes", n.CanonicalToken(s))
		assert.True(t, n.IsCanonical(n.CanonicalToken(s), s))
	}
}

func TestTagList(t *testing.T) {
	assert.Equal(t, []string{}, (&Note{}).TagList())
	assert.Equal(t, []string{"a", "b"}, (&Note{Tags: "a, b,"}).TagList())
}
