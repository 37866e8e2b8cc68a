package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hireloop/hireloop/internal/campaign"
	"github.com/hireloop/hireloop/internal/gemini"
	"github.com/hireloop/hireloop/internal/resume"
)

func newPreviewCmd() *cobra.Command {
	var (
		recipientsPath string
		templatePath   string
		subject        string
		resumePath     string
		noPersonalize  bool
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Generate one email without sending it",
		Long: `Generate the email for the first recipient row and print it to stdout.
Nothing is sent; use this to iterate on templates and personalization before
committing to a full run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := loadRecipients(recipientsPath)
			if err != nil {
				return err
			}
			if len(result.Records) == 0 {
				return fmt.Errorf("no sendable recipients in %s", recipientsPath)
			}
			rec := result.Records[0]

			template, err := os.ReadFile(templatePath)
			if err != nil {
				return fmt.Errorf("failed to read template: %w", err)
			}

			body := campaign.Substitute(string(template), rec.Company, rec.Recruiter)

			if !noPersonalize {
				client, err := gemini.NewClient(os.Getenv(gemini.EnvAPIKey))
				if err != nil {
					return err
				}

				summary := ""
				if resumePath != "" {
					data, err := os.ReadFile(resumePath)
					if err != nil {
						return fmt.Errorf("failed to read resume: %w", err)
					}
					summary, err = resume.Summary(data)
					if err != nil {
						return fmt.Errorf("failed to extract resume text: %w", err)
					}
				}

				prompt := gemini.PersonalizationPrompt(gemini.PromptInput{
					CompanyName:   rec.Company,
					RecruiterName: rec.Recruiter,
					BaseTemplate:  body,
					ResumeSummary: summary,
					Fields:        rec.Fields,
				})
				body, err = client.Generate(cmd.Context(), prompt)
				if err != nil {
					return fmt.Errorf("generation failed: %w", err)
				}
				body = campaign.Substitute(body, rec.Company, rec.Recruiter)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "To: %s\n", rec.Email)
			fmt.Fprintf(out, "Subject: %s\n\n", campaign.Substitute(subject, rec.Company, rec.Recruiter))
			fmt.Fprintln(out, body)
			return nil
		},
	}

	cmd.Flags().StringVar(&recipientsPath, "recipients", "", "Path to the recipients CSV (required)")
	cmd.Flags().StringVar(&templatePath, "template", "", "Path to the email body template (required)")
	cmd.Flags().StringVar(&subject, "subject", "", "Email subject; supports placeholder tokens")
	cmd.Flags().StringVar(&resumePath, "resume", "", "Path to a resume PDF used for personalization")
	cmd.Flags().BoolVar(&noPersonalize, "no-personalize", false, "Skip AI personalization; show plain substitution only")

	_ = cmd.MarkFlagRequired("recipients")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}
