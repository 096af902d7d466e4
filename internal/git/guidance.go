package git

import (
	"fmt"
	"net/url"
	"strings"
)

// Redact hides any password in a URL for display. Non-URL remotes (scp-style,
// local paths) are returned unchanged.
func Redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.User == nil {
		return raw
	}
	return u.Redacted()
}

// SeedGuidance explains how to create the first branch on an empty remote.
func SeedGuidance(d Descriptor) string {
	branch, u := d.BranchOrDefault(), Redact(d.URL)
	seed := d.Name + "-seed"

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] Remote has no branches at %s.\n", d.Name, u)
	fmt.Fprintf(&b, "Create the initial branch %q once, then rerun:\n\n", branch)
	fmt.Fprintf(&b, "  git init -b %s %s && cd %s\n", branch, seed, seed)
	fmt.Fprintf(&b, "  echo \"# %s\" > README.md\n", d.Name)
	fmt.Fprintf(&b, "  git add README.md && git commit -m \"init %s\"\n", branch)
	fmt.Fprintf(&b, "  git remote add origin %s\n", u)
	fmt.Fprintf(&b, "  git push -u origin %s\n", branch)
	fmt.Fprintf(&b, "  cd .. && rm -rf %s\n", seed)
	return b.String()
}

// BranchGuidance explains how to create a missing branch from an existing one.
func BranchGuidance(d Descriptor) string {
	branch, u := d.BranchOrDefault(), Redact(d.URL)

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] Required branch %q does not exist on %s.\n", d.Name, branch, u)
	b.WriteString("Create it once from the remote default or your desired base:\n\n")
	fmt.Fprintf(&b, "  git clone %s tmp && cd tmp\n", u)
	b.WriteString("  # if the repository already has a default branch (e.g. master/trunk):\n")
	fmt.Fprintf(&b, "  git checkout -b %s <base-branch>\n", branch)
	fmt.Fprintf(&b, "  git push -u origin %s\n", branch)
	b.WriteString("  cd .. && rm -rf tmp\n\n")
	b.WriteString("Then rerun the container.\n")
	return b.String()
}
