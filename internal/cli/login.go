package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gauravnainwal518/note-app/pkg/client"
)

func (a *app) loginCommand() *cobra.Command {
	login := &cobra.Command{
		Use:   "login",
		Short: "Log in with an emailed code or a Google ID token",
	}

	request := &cobra.Command{
		Use:   "request",
		Short: "Email a one-time code",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			name, _ := cmd.Flags().GetString("name")
			if err := a.client().RequestOTP(cmd.Context(), email, name); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Code sent to %s. Run `notectl login verify --email %s --code <code>`.\n", email, email)
			return nil
		},
	}
	request.Flags().String("email", "", "account email")
	request.Flags().String("name", "", "display name, used when the account is new")
	_ = request.MarkFlagRequired("email")

	verify := &cobra.Command{
		Use:   "verify",
		Short: "Exchange the emailed code for a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			code, _ := cmd.Flags().GetString("code")
			session, err := a.client().VerifyOTP(cmd.Context(), email, code)
			if err != nil {
				return err
			}
			return a.finishLogin(cmd, session)
		},
	}
	verify.Flags().String("email", "", "account email")
	verify.Flags().String("code", "", "code from the email")
	verify.Flags().Bool("keep", false, "stay logged in across runs")
	_ = verify.MarkFlagRequired("email")
	_ = verify.MarkFlagRequired("code")

	google := &cobra.Command{
		Use:   "google",
		Short: "Log in with a Google ID token",
		RunE: func(cmd *cobra.Command, args []string) error {
			idToken, _ := cmd.Flags().GetString("id-token")
			session, err := a.client().GoogleLogin(cmd.Context(), idToken)
			if err != nil {
				return err
			}
			return a.finishLogin(cmd, session)
		},
	}
	google.Flags().String("id-token", "", "Google ID token")
	google.Flags().Bool("keep", false, "stay logged in across runs")
	_ = google.MarkFlagRequired("id-token")

	login.AddCommand(request, verify, google)
	return login
}

// finishLogin stores the session according to --keep.
func (a *app) finishLogin(cmd *cobra.Command, session *client.Session) error {
	keep, _ := cmd.Flags().GetBool("keep")
	store := client.NewSessionStore(keep, a.v.GetString("session-file"))
	if err := store.Save(session); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s <%s>\n", session.User.Name, session.User.Email)
	if fs, ok := store.(*client.FileStore); ok {
		fmt.Fprintf(a.out, "Session saved to %s\n", fs.Path())
		return nil
	}
	fmt.Fprintf(a.out, "Session not saved. For this shell:\n  export %s_TOKEN=%s\n", envPrefix, session.Token)
	return nil
}

func (a *app) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.fileStore().Clear(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out.")
			return nil
		},
	}
}

func (a *app) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := a.session()
			if err != nil {
				return err
			}
			user, err := a.client().Me(cmd.Context(), session)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s <%s> (%s)\n", user.Name, user.Email, user.ID)
			return nil
		},
	}
}
