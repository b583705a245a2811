// Package shoppinglist renders the downloadable shopping list.
package shoppinglist

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// FileName is the attachment name the list is served under.
const FileName = "shopping_list.txt"

// Line is one aggregated ingredient.
type Line struct {
	Name   string
	Unit   string
	Amount int64
}

// String formats the line as "Name (unit) - total".
func (l Line) String() string {
	return fmt.Sprintf("%s (%s) - %d", l.Name, l.Unit, l.Amount)
}

// Text renders one line per item, each terminated by a newline. An empty list
// renders nothing.
func Text(lines []Line) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, line := range lines {
			if _, err := io.WriteString(w, line.String()+"\n"); err != nil {
				return err
			}
		}
		return nil
	})
}
