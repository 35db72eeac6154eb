package decl

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRefText(t *testing.T) {
	tests := []struct {
		ref  Ref
		text string
	}{
		{ParentRef(), "parent"},
		{SelfRef(), "self"},
		{FrameworkRef(), "framework"},
		{ChildRef("logger"), "child:logger"},
		{DynamicChildRef("workers", "w1"), "child:workers:w1"},
		{CollectionRef("workers"), "collection:workers"},
		{CapabilityRef("data"), "capability:data"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			require.Equal(t, tt.text, tt.ref.String())

			var back Ref
			require.NoError(t, back.UnmarshalText([]byte(tt.text)))
			require.Equal(t, tt.ref, back)
		})
	}
}

func TestRefUnmarshalRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "child", "child:", "collection:", "what:x", "child::a", "child:a:b:c"} {
		var r Ref
		require.Error(t, r.UnmarshalText([]byte(s)), "input %q", s)
	}
}

func TestDependencyTypeIsWeak(t *testing.T) {
	require.False(t, DependencyType("").IsWeak())
	require.False(t, DependencyStrong.IsWeak())
	require.True(t, DependencyWeak.IsWeak())
	require.True(t, DependencyWeakForMigration.IsWeak())
}

func TestDeclLookups(t *testing.T) {
	d := Decl{
		Children:     []Child{{Name: "db"}, {Name: "cache", Environment: "env-a"}},
		Collections:  []Collection{{Name: "workers", Environment: "env-a"}},
		Capabilities: []Capability{{Kind: KindStorage, Name: "data", Source: ChildRef("db")}},
		Environments: []Environment{{Name: "env-a"}},
	}

	c, ok := d.Child("cache")
	require.True(t, ok)
	require.Equal(t, "env-a", c.Environment)
	_, ok = d.Child("nope")
	require.False(t, ok)

	coll, ok := d.Collection("workers")
	require.True(t, ok)
	require.Equal(t, "env-a", coll.Environment)

	cap, ok := d.Capability("data")
	require.True(t, ok)
	require.Equal(t, ChildRef("db"), cap.Source)

	_, ok = d.Environment("env-a")
	require.True(t, ok)
	_, ok = d.Environment("env-b")
	require.False(t, ok)
}

const fixture = `
[[child]]
name = "db"

[[child]]
name = "web"
environment = "main-env"

[[collection]]
name = "workers"
environment = "main-env"

[[offer]]
kind = "protocol"
source = "child:db"
source_name = "svc.Query"
target = "child:web"

[[offer]]
kind = "directory"
source = "child:db"
source_name = "exports"
target = "child:web"
dependency = "weak"

[[capability]]
kind = "storage"
name = "data"
source = "child:db"

[[environment]]
name = "main-env"

[[environment.registrations]]
kind = "runner"
source = "child:db"
source_name = "sql-runner"

[[use]]
kind = "protocol"
source = "child:web"
source_name = "svc.Health"
`

func TestParseTOML(t *testing.T) {
	d, err := ParseTOML([]byte(fixture))
	require.NoError(t, err)

	require.Len(t, d.Children, 2)
	require.Len(t, d.Offers, 2)
	require.Equal(t, ChildRef("db"), d.Offers[0].Source)
	require.Equal(t, ChildRef("web"), d.Offers[0].Target)
	require.False(t, d.Offers[0].Dependency.IsWeak())
	require.True(t, d.Offers[1].Dependency.IsWeak())

	env, ok := d.Environment("main-env")
	require.True(t, ok)
	require.Len(t, env.Registrations, 1)
	require.Equal(t, RegistrationRunner, env.Registrations[0].Kind)
	require.Equal(t, ChildRef("db"), env.Registrations[0].Source)

	require.Len(t, d.Uses, 1)
	require.Equal(t, "svc.Health", d.Uses[0].SourceName)
}

func TestParseTOMLRejectsUnknownKeys(t *testing.T) {
	_, err := ParseTOML([]byte("[[child]]\nname = \"a\"\nbogus = true\n"))
	require.Error(t, err)
}

func TestEncodeTOMLRoundTrip(t *testing.T) {
	d, err := ParseTOML([]byte(fixture))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeTOML(&buf, d))

	back, err := ParseTOML(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, d, back)
}
