package formatter

import (
	"fmt"

	"github.com/alexanderramin/taskdeck/internal/domain"
	"github.com/alexanderramin/taskdeck/internal/service"
)

func FormatAttachments(list []*domain.Attachment) string {
	if len(list) == 0 {
		return Dim("No attachments.") + "\n"
	}
	rows := make([][]string, 0, len(list))
	for _, a := range list {
		rows = append(rows, []string{
			Dim(fmt.Sprintf("#%d", a.ID)),
			a.FileName,
			service.FormatSize(a.Size),
			Dim(a.MimeType),
			HumanDate(a.CreatedAt),
		})
	}
	return RenderTable([]string{"ID", "FILE", "SIZE", "TYPE", "ADDED"}, rows)
}

func FormatScreenshots(shots []service.Screenshot) string {
	if len(shots) == 0 {
		return Dim("No screenshots found.") + "\n"
	}
	rows := make([][]string, 0, len(shots))
	for _, s := range shots {
		rows = append(rows, []string{
			s.Name,
			s.SizeLabel,
			HumanTimestamp(s.Modified),
			Dim(s.Path),
		})
	}
	return RenderTable([]string{"FILE", "SIZE", "MODIFIED", "PATH"}, rows)
}
