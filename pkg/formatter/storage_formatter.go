// File: pkg/formatter/storage_formatter.go
package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"stowage/pkg/multi/migration"
	"stowage/pkg/multi/mirror"
	"stowage/pkg/storage"
)

type StorageFormatter struct{}

func NewStorageFormatter() *StorageFormatter {
	return &StorageFormatter{}
}

func (f *StorageFormatter) FormatBackendList(statuses []storage.BackendStatus) string {
	table := NewTable([]string{"BACKEND", "KIND", "STATUS", "USAGE", "ERROR"})

	for _, s := range statuses {
		status := okStyle.Render("reachable")
		if !s.Reachable {
			status = errStyle.Render("unreachable")
		}
		table.AddRow([]string{
			s.Name,
			string(s.Kind),
			status,
			storage.FormatBytes(s.UsageBytes),
			s.Error,
		})
	}

	return table.String()
}

func (f *StorageFormatter) FormatObjectList(target, prefix string, ids []string) string {
	var sb strings.Builder

	title := "Objects in " + target
	if prefix != "" {
		title += " under " + prefix
	}
	sb.WriteString(FormatSectionTitle(title))
	sb.WriteString("\n")

	if len(ids) == 0 {
		sb.WriteString(mutedStyle.Render("(no objects)"))
		return sb.String()
	}

	table := NewTable([]string{"#", "ID"})
	for i, id := range ids {
		table.AddRow([]string{strconv.Itoa(i + 1), id})
	}
	sb.WriteString(table.String())
	fmt.Fprintf(&sb, "\n%d object(s)", len(ids))
	return sb.String()
}

// Breaks a mirror failure down per backend. names labels backend indices in mirror order;
// rollback tells whether the mirror's strategy rolls back partial writes
func (f *StorageFormatter) FormatMirrorFailure(failure *mirror.Failure, names []string, rollback bool) string {
	var sb strings.Builder

	sb.WriteString(FormatHeaderSection("Mirror write failed"))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "%d of %d backend(s) acknowledged the write, %d required\n\n",
		len(failure.Successes), max(len(names), failure.Attempted()), failure.Required)

	writeErrs := make(map[int]error, len(failure.Failures))
	for _, fe := range failure.Failures {
		writeErrs[fe.Index] = fe.Err
	}
	rollbackErrs := make(map[int]error, len(failure.RollbackErrors))
	for _, re := range failure.RollbackErrors {
		rollbackErrs[re.Index] = re.Err
	}
	succeeded := make(map[int]bool, len(failure.Successes))
	for _, i := range failure.Successes {
		succeeded[i] = true
	}

	table := NewTable([]string{"#", "BACKEND", "WRITE", "ROLLBACK"})
	for i := range max(len(names), failure.Attempted()) {
		name := "-"
		if i < len(names) {
			name = names[i]
		}

		write := mutedStyle.Render("not attempted")
		undo := "-"
		switch {
		case succeeded[i]:
			write = okStyle.Render("ok")
			if err, failed := rollbackErrs[i]; failed {
				undo = errStyle.Render("failed: " + err.Error())
			} else if rollback {
				undo = "rolled back"
			}
		case writeErrs[i] != nil:
			write = errStyle.Render("failed: " + writeErrs[i].Error())
		}
		table.AddRow([]string{strconv.Itoa(i), name, write, undo})
	}
	sb.WriteString(table.String())
	return sb.String()
}

func (f *StorageFormatter) FormatMigrationResult(result *migration.Result) string {
	var sb strings.Builder
	sb.WriteString(result.String())

	if len(result.Errors) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(FormatSectionTitle("Errors"))
		sb.WriteString("\n")
		table := NewTable([]string{"ID", "ERROR"})
		for _, e := range result.Errors {
			table.AddRow([]string{e.ID, errStyle.Render(e.Err.Error())})
		}
		sb.WriteString(table.String())
	}
	return sb.String()
}
