package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/kimhsiao/addressbook/internal/models"
)

// WriteListing writes a plain-text contact listing suitable for printing.
func WriteListing(w io.Writer, contacts []*models.Contact) error {
	bw := bufio.NewWriter(w)
	title := "Address Book - Contact List"
	fmt.Fprintf(bw, "%s\n%s\n\n", title, strings.Repeat("=", len(title)))

	if len(contacts) == 0 {
		fmt.Fprintln(bw, "No contacts to print.")
		return bw.Flush()
	}

	for _, c := range contacts {
		fmt.Fprintf(bw, "Name: %s\n", c.FullName())
		fmt.Fprintf(bw, "Location: %s\n", c.Location)
		fmt.Fprintf(bw, "Phone: %s\n", c.Phone)
		fmt.Fprintf(bw, "Email: %s\n", c.Email)
		fmt.Fprintf(bw, "Created: %s\n", c.CreatedAtDisplay())
		fmt.Fprintln(bw, strings.Repeat("-", 24))
	}
	return bw.Flush()
}
