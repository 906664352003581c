package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func (a *app) notesCommand() *cobra.Command {
	notes := &cobra.Command{
		Use:   "notes",
		Short: "Manage your notes",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Create a note",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.session()
			if err != nil {
				return err
			}
			title, _ := cmd.Flags().GetString("title")
			content, _ := cmd.Flags().GetString("content")

			note, err := a.client().CreateNote(cmd.Context(), session, title, content)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Created note %s\n", note.ID)
			return nil
		},
	}
	add.Flags().String("title", "", "note title")
	add.Flags().String("content", "", "note body")
	_ = add.MarkFlagRequired("title")
	_ = add.MarkFlagRequired("content")

	list := &cobra.Command{
		Use:   "list",
		Short: "List your notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.session()
			if err != nil {
				return err
			}
			items, err := a.client().ListNotes(cmd.Context(), session)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(a.out, "No notes yet.")
				return nil
			}

			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tCREATED")
			for _, n := range items {
				fmt.Fprintf(w, "%s\t%s\t%s\n", n.ID, n.Title, n.CreatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}

	rm := &cobra.Command{
		Use:   "rm [note-id]",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.session()
			if err != nil {
				return err
			}
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid note id %q", args[0])
			}
			if err := a.client().DeleteNote(cmd.Context(), session, id); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Note deleted.")
			return nil
		},
	}

	notes.AddCommand(add, list, rm)
	return notes
}
