package cfgtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `hostname r1
!
interface Gi0/1
 description uplink
 ip address 10.0.0.1 255.255.255.0
!
interface Gi0/2
 shutdown
!
router bgp 65000
 neighbor 10.0.0.2 remote-as 65001
 address-family ipv4
  network 10.0.0.0 mask 255.255.255.0
 exit-address-family
`

func TestBuild_Nesting(t *testing.T) {
	tree := Parse(sampleConfig, BuildOptions{Skip: []string{"!"}})

	require.Equal(t, []string{"hostname r1", "interface Gi0/1", "interface Gi0/2", "router bgp 65000"}, tree.Keys())

	gi1, ok := tree.Get("interface Gi0/1")
	require.True(t, ok)
	assert.Equal(t, 0, gi1.Indent)
	assert.Equal(t, []string{"description uplink", "ip address 10.0.0.1 255.255.255.0"}, gi1.Keys())

	bgp, ok := tree.Get("router bgp 65000")
	require.True(t, ok)
	assert.Equal(t, []string{"neighbor 10.0.0.2 remote-as 65001", "address-family ipv4", "exit-address-family"}, bgp.Keys())

	af, ok := bgp.Child("address-family ipv4")
	require.True(t, ok)
	assert.Equal(t, 1, af.Indent)
	assert.Equal(t, []string{"network 10.0.0.0 mask 255.255.255.0"}, af.Keys())
}

func TestBuild_SkipKeepsNestedLines(t *testing.T) {
	tree := Build([]string{"a", "  !", "  b"}, BuildOptions{Skip: []string{"!"}})
	a, ok := tree.Get("a")
	require.True(t, ok)
	assert.Equal(t, []string{"b"}, a.Keys())
}

func TestBuild_BangIsANodeWithoutSkip(t *testing.T) {
	tree := Build([]string{"a", "!", "b"}, BuildOptions{})
	assert.Equal(t, []string{"a", "!", "b"}, tree.Keys())
}

func TestBuild_BlankLinesIgnored(t *testing.T) {
	tree := Build([]string{"", "a", "   ", "\t", "  b", ""}, BuildOptions{})
	require.Equal(t, []string{"a"}, tree.Keys())
	a, _ := tree.Get("a")
	assert.Equal(t, []string{"b"}, a.Keys())
}

func TestBuild_EmptyInput(t *testing.T) {
	assert.True(t, Build(nil, BuildOptions{}).Empty())
	assert.True(t, Parse("", BuildOptions{}).Empty())
	assert.True(t, Parse("\n\n  \n", BuildOptions{}).Empty())
}

func TestBuild_DedentClosesDeeperBlocks(t *testing.T) {
	// "d" is indented less than "b" and "c" but more than "a", so it attaches to "a".
	tree := Build([]string{"a", "    b", "      c", "  d", "e"}, BuildOptions{})
	require.Equal(t, []string{"a", "e"}, tree.Keys())

	a, _ := tree.Get("a")
	assert.Equal(t, []string{"b", "d"}, a.Keys())
	b, _ := a.Child("b")
	assert.Equal(t, []string{"c"}, b.Keys())
}

func TestBuild_FirstLineIndented(t *testing.T) {
	// A line with no shallower ancestor is a root, whatever its indentation.
	tree := Build([]string{"   a", "b"}, BuildOptions{})
	assert.Equal(t, []string{"a", "b"}, tree.Keys())

	a, _ := tree.Get("a")
	assert.Equal(t, 3, a.Indent)
}

func TestBuild_TrimsTrailingWhitespace(t *testing.T) {
	tree := Build([]string{"a   ", "  b\r"}, BuildOptions{})
	a, ok := tree.Get("a")
	require.True(t, ok)
	assert.Equal(t, []string{"b"}, a.Keys())
}

func TestBuild_TabWidth(t *testing.T) {
	lines := []string{"a", "\tb", "    c"}

	// A tab counts as one column: "c" (4 spaces) nests under "b".
	tree := Build(lines, BuildOptions{})
	a, _ := tree.Get("a")
	require.Equal(t, []string{"b"}, a.Keys())
	b, _ := a.Child("b")
	assert.Equal(t, []string{"c"}, b.Keys())

	// A tab counts as four columns: "c" is a sibling of "b".
	tree = Build(lines, BuildOptions{TabWidth: 4})
	a, _ = tree.Get("a")
	assert.Equal(t, []string{"b", "c"}, a.Keys())
}

func TestBuild_Ignore(t *testing.T) {
	ignore, err := CompileIgnore([]string{`^ntp clock-period`, `^crypto pki certificate`})
	require.NoError(t, err)

	lines := []string{
		"ntp clock-period 17179800",
		"crypto pki certificate chain TP-self-signed",
		" certificate self-signed 01",
		"  3082022B 30820194",
		"interface Gi0/1",
		" ntp clock-period 1",
		" shutdown",
	}
	tree := Build(lines, BuildOptions{Ignore: ignore})
	require.Equal(t, []string{"interface Gi0/1"}, tree.Keys())

	gi, _ := tree.Get("interface Gi0/1")
	assert.Equal(t, []string{"shutdown"}, gi.Keys())
}

func TestCompileIgnore_Invalid(t *testing.T) {
	_, err := CompileIgnore([]string{"ok", "("})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"("`)
}

// Duplicate sibling text is a policy choice. These two tests pin both policies.

func TestBuild_DuplicateMerge(t *testing.T) {
	lines := []string{
		"interface Gi0/1",
		"  description one",
		"router ospf 1",
		"interface Gi0/1",
		"  shutdown",
	}
	tree := Build(lines, BuildOptions{Duplicates: DuplicateMerge})
	require.Equal(t, []string{"interface Gi0/1", "router ospf 1"}, tree.Keys())

	gi, _ := tree.Get("interface Gi0/1")
	assert.Equal(t, []string{"description one", "shutdown"}, gi.Keys())
}

func TestBuild_DuplicateReplace(t *testing.T) {
	lines := []string{
		"interface Gi0/1",
		"  description one",
		"router ospf 1",
		"    interface Gi0/1",
		"      shutdown",
	}
	// The nested "interface Gi0/1" belongs to "router ospf 1", so only the root one is checked here.
	tree := Build(lines, BuildOptions{Duplicates: DuplicateReplace})
	gi, _ := tree.Get("interface Gi0/1")
	assert.Equal(t, []string{"description one"}, gi.Keys())

	lines = []string{
		"interface Gi0/1",
		"  description one",
		"router ospf 1",
		"interface Gi0/1",
		"  shutdown",
	}
	tree = Build(lines, BuildOptions{Duplicates: DuplicateReplace})
	require.Equal(t, []string{"interface Gi0/1", "router ospf 1"}, tree.Keys(), "replacing keeps the original position")

	gi, _ = tree.Get("interface Gi0/1")
	assert.Equal(t, []string{"shutdown"}, gi.Keys())
}

func TestBuild_DuplicateMergeKeepsFirstIndent(t *testing.T) {
	tree := Build([]string{"a", "  b", "a", "    b"}, BuildOptions{})
	a, _ := tree.Get("a")
	b, _ := a.Child("b")
	assert.Equal(t, 2, b.Indent)
}

func TestParseDuplicatePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    DuplicatePolicy
		wantErr bool
	}{
		{in: "", want: DuplicateMerge},
		{in: "merge", want: DuplicateMerge},
		{in: " Replace ", want: DuplicateReplace},
		{in: "keep-both", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDuplicatePolicy(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, SplitLines(""))
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\nb\n"))
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\r\nb\r\n"))
	assert.Equal(t, []string{"a", "", "b"}, SplitLines("a\n\nb"))
}

func TestDuplicatePolicy_String(t *testing.T) {
	assert.Equal(t, "merge", DuplicateMerge.String())
	assert.Equal(t, "replace", DuplicateReplace.String())
	assert.Equal(t, "DuplicatePolicy(7)", DuplicatePolicy(7).String())
}
