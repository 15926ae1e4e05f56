package printer

import "github.com/upkeep-sh/upkeep/internal/model"

// Printer knows how to print run history in different formats.
type Printer interface {
	PrintRunList(runs []model.Run) error
	PrintRun(run model.Run) error
	PrintMessage(msg string) error
}
