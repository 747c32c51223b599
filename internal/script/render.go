package script

import (
	"fmt"
	"strings"
)

const header = `#!/bin/sh
# fspec virtual hook %s for %s.
# Generated file: edits are overwritten when the hook is re-added.
`

// filesBody reads the hook context from stdin and collects stagedFiles and
// unstagedFiles, one path per line. Paths containing commas, quotes or
// newlines are not supported.
const filesBody = `
input=$(cat)

extract_files() {
  printf '%s' "$input" | tr -d '\n' |
    sed -n "s/.*\"$1\"[[:space:]]*:[[:space:]]*\[\([^]]*\)\].*/\1/p" |
    tr ',' '\n' |
    sed -e 's/^[[:space:]]*"//' -e 's/"[[:space:]]*$//' |
    grep -v '^[[:space:]]*$'
}

files=$(extract_files stagedFiles; extract_files unstagedFiles)

if [ -z "$files" ]; then
  echo "` + NoFilesMessage + `"
  exit 0
fi

set --
while IFS= read -r file; do
  set -- "$@" "$file"
done <<FSPEC_FILES
$files
FSPEC_FILES

`

// Render returns the script content for a virtual hook.
func Render(workUnitID, hookName, command string, gitContext bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, header, hookName, workUnitID)
	if gitContext {
		b.WriteString(filesBody)
		b.WriteString(command + ` "$@"` + "\n")
		return b.String()
	}
	b.WriteString("\n" + command + "\n")
	return b.String()
}
