package merge

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const (
	inputSnippet    = "import { Input } from '@visa/nova-react';\n\nexport const DefaultInput = () => {\n  const label = 'Email';\n  return (\n    <Input aria-label=\"email\" />\n  );\n};\n"
	signInSnippet   = "import { Button } from '@visa/nova-react';\n\nexport const DefaultButton = () => {\n  return (\n    <Button>Sign in</Button>\n  );\n};\n"
	checkboxSnippet = "import { Checkbox } from '@visa/nova-react';\nconst label = 'Email';\n\nexport const Remember = () => {\n  return <Checkbox />;\n};\n"
)

func TestMergeLayout_FormWrapper(t *testing.T) {
	got := newMerger(t).MergeLayout([]string{inputSnippet, signInSnippet, checkboxSnippet}, "LoginForm")

	want := `import { Button } from '@visa/nova-react';
import { Checkbox } from '@visa/nova-react';
import { Input } from '@visa/nova-react';

export default function LoginForm() {
  const label = 'Email';

  return (
    <div className="max-w-md mx-auto p-6 bg-white rounded-lg shadow-md">
      <form className="space-y-4">
      <div className="mb-4">
        <Input aria-label="email" />
      </div>
      <div className="mt-6">
        <Button>Sign in</Button>
      </div>
      <div className="mb-3">
        <Checkbox />
      </div>
      </form>
    </div>
  );
}`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("MergeLayout mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeLayout_ProfileAndGeneric(t *testing.T) {
	m := newMerger(t)
	avatar := "export const A = () => {\n  return (\n    <Avatar />\n  );\n};"
	badge := "export const B = () => {\n  return (\n    <Badge>New</Badge>\n  );\n};"

	got := m.MergeLayout([]string{avatar, badge}, "UserCard")
	require.Contains(t, got, `<div className="max-w-sm mx-auto p-6 bg-white rounded-lg shadow-lg text-center">`)
	require.Contains(t, got, "<div className=\"flex justify-center mb-4\">\n        <Avatar />")
	require.Contains(t, got, "<div className=\"flex flex-wrap gap-2 mb-3\">\n        <Badge>New</Badge>")

	got = m.MergeLayout([]string{avatar, badge}, "Dashboard")
	require.Contains(t, got, `<div className="p-6 space-y-4">`)
	require.NotContains(t, got, "<form")
}

func TestClassify(t *testing.T) {
	for name, want := range map[string]layout{
		"SignupPage":     layoutForm,
		"RegisterDialog": layoutForm,
		"AccountMenu":    layoutProfile,
		"profile":        layoutProfile,
		"Generated":      layoutGeneric,
	} {
		require.Equal(t, want, classify(name), name)
	}
}

func TestExtractJSX(t *testing.T) {
	require.Equal(t, jsxPlaceholder, extractJSX("const x = 1;"))
	require.Equal(t, "<Link />", extractJSX("function L() { return (<Link />); }"))
}

func TestLocalConsts(t *testing.T) {
	code := "const a = 1;\nexport const B = () => {\n  const c = 'x';\n  return (<div />);\n};\n"
	if diff := cmp.Diff([]string{"const a = 1;", "const c = 'x';"}, localConsts(code)); diff != "" {
		t.Fatalf("localConsts (-want +got):\n%s", diff)
	}
}
