package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var articlesCmd = &cobra.Command{
	Use:     "articles",
	Aliases: []string{"article"},
	Short:   "Browse help-center articles",
}

var articlesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List articles",
	RunE:  runArticlesList,
}

var articlesGetCmd = &cobra.Command{
	Use:   "get [article-id]",
	Short: "Show one article",
	Args:  cobra.ExactArgs(1),
	RunE:  runArticlesGet,
}

var articlesSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search articles by keyword",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runArticlesSearch,
}

func init() {
	articlesListCmd.Flags().Int("page", 1, "page number")
	articlesListCmd.Flags().Int("per-page", 30, "articles per page")
	articlesGetCmd.Flags().Bool("raw", false, "print the body without rendering")

	articlesCmd.AddCommand(articlesListCmd)
	articlesCmd.AddCommand(articlesGetCmd)
	articlesCmd.AddCommand(articlesSearchCmd)
	rootCmd.AddCommand(articlesCmd)
}

func runArticlesList(cmd *cobra.Command, _ []string) error {
	if articleService == nil {
		return errors.New("article service not configured")
	}
	page, _ := cmd.Flags().GetInt("page")
	perPage, _ := cmd.Flags().GetInt("per-page")

	result, err := articleService.List(cmd.Context(), page, perPage)
	if err != nil {
		return friendly(err)
	}
	if len(result.Articles) == 0 {
		cmd.Println("No articles found.")
		return nil
	}

	cmd.Printf("Articles (page %d of %d, %d total):\n\n", result.Page, max(result.Pages, 1), result.Total)
	for _, a := range result.Articles {
		cmd.Printf("  %-12s %s\n", a.ID, a.Title)
	}
	return nil
}

func runArticlesGet(cmd *cobra.Command, args []string) error {
	if articleService == nil {
		return errors.New("article service not configured")
	}

	doc, err := articleService.Get(cmd.Context(), args[0])
	if err != nil {
		return friendly(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	if doc.URL != "" {
		fmt.Fprintf(&b, "%s\n\n", doc.URL)
	}
	if doc.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n\n", doc.Category)
	}
	b.WriteString(doc.Body)

	if raw, _ := cmd.Flags().GetBool("raw"); raw {
		cmd.Println(b.String())
		return nil
	}
	return printMarkdown(cmd.OutOrStdout(), b.String())
}

func runArticlesSearch(cmd *cobra.Command, args []string) error {
	if articleService == nil {
		return errors.New("article service not configured")
	}

	query := strings.Join(args, " ")
	docs, err := articleService.Search(cmd.Context(), query)
	if err != nil {
		return friendly(err)
	}
	if len(docs) == 0 {
		cmd.Printf("No articles match %q.\n", query)
		return nil
	}

	cmd.Printf("Found %d articles:\n\n", len(docs))
	for i, d := range docs {
		cmd.Printf("%d. %s (%s)\n", i+1, d.Title, d.ID)
		if d.URL != "" {
			cmd.Printf("   %s\n", d.URL)
		}
	}
	return nil
}
