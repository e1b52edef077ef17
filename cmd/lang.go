package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginkgo-talk/gtalk-remote/internal/config"
	"github.com/ginkgo-talk/gtalk-remote/internal/i18n"
)

func langCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lang [tag]",
		Short: "Show or set the UI language",
		Long:  "Without arguments, prints the active language. With a tag (" + strings.Join(i18n.Languages(), ", ") + "), switches and persists it.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := i18n.New(config.DefaultDir())
			if len(args) == 0 {
				fmt.Println(cat.Lang())
				return nil
			}

			tag := args[0]
			found := false
			for _, l := range i18n.Languages() {
				if strings.EqualFold(l, tag) {
					tag = l
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("unsupported language %q (%s)", args[0], strings.Join(i18n.Languages(), ", "))
			}
			if err := cat.SetLang(tag); err != nil {
				return err
			}
			fmt.Println(tag)
			return nil
		},
	}
}
