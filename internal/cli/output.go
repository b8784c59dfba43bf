package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/duynhne/client-service/internal/core/domain"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printMessage(w io.Writer, format, msg string) error {
	if format == "json" {
		return printJSON(w, map[string]string{"status": msg})
	}
	_, err := fmt.Fprintln(w, msg)
	return err
}

func printID(w io.Writer, format string, id int64) error {
	if format == "json" {
		return printJSON(w, map[string]int64{"id": id})
	}
	_, err := fmt.Fprintln(w, id)
	return err
}

func printClient(w io.Writer, format string, c *domain.Client) error {
	if format == "json" {
		return printJSON(w, c)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSURNAME\tEMAIL")
	fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.Surname, c.Email)
	return tw.Flush()
}

// printRows renders join rows; a client without phones shows "-" for the phone.
func printRows(w io.Writer, format string, rows []domain.ClientPhone) error {
	if format == "json" {
		if rows == nil {
			rows = []domain.ClientPhone{}
		}
		return printJSON(w, rows)
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSURNAME\tEMAIL\tPHONE")
	for _, r := range rows {
		phone := "-"
		if r.Number != nil {
			phone = strconv.FormatInt(*r.Number, 10)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Surname, r.Email, phone)
	}
	return tw.Flush()
}
