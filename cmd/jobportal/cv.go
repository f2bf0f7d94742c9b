package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"jobportal/internal/auth"
	"jobportal/internal/cvconvert"
	"jobportal/internal/guard"
	"jobportal/internal/session"
)

func (c *cli) cvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cv",
		Short: "Manage your CVs",
	}

	upload := &cobra.Command{
		Use:   "upload <file.pdf|file.docx>",
		Short: "Upload a CV (DOCX is converted to PDF first)",
		Args:  cobra.ExactArgs(1),
		RunE: c.gated(guard.ClientRoute, func(cmd *cobra.Command, args []string, _ session.State) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			name, pdf, err := cvconvert.PrepareUpload(args[0], data)
			if err != nil {
				return err
			}
			res, err := c.client().UploadCV(cmd.Context(), name, pdf)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Uploaded %s as CV %s\n", name, res.CVID)
			return nil
		}),
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List your CVs",
		RunE: c.gated(guard.ClientRoute, func(cmd *cobra.Command, args []string, st session.State) error {
			cvs, err := c.client().ListCVs(cmd.Context())
			if err != nil {
				return err
			}
			var rows [][]string
			for _, cv := range cvs {
				if cv.UserID != st.User.ID {
					continue
				}
				rows = append(rows, []string{cv.ID, cv.Filename, cv.UploadDate.Format("2006-01-02")})
			}
			return c.printTable([]string{"ID", "FILE", "UPLOADED"}, rows)
		}),
	}

	var outDir string
	download := &cobra.Command{
		Use:   "download <id>",
		Short: "Download a CV",
		Args:  cobra.ExactArgs(1),
		RunE: c.gated(guard.Roles(auth.RoleCandidate, auth.RoleAdmin), func(cmd *cobra.Command, args []string, _ session.State) error {
			blob, err := c.client().DownloadCV(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			name := filepath.Base(blob.Filename)
			if blob.Filename == "" {
				name = args[0] + ".pdf"
			}
			path := filepath.Join(outDir, name)
			if err := os.WriteFile(path, blob.Data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Saved %s\n", path)
			return nil
		}),
	}
	download.Flags().StringVar(&outDir, "out", ".", "Directory to save into")

	cmd.AddCommand(upload, list, download)
	return cmd
}
