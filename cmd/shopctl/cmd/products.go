package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"storefront-api/internal/domain"
)

var (
	flagPage     int
	flagPageSize int
	flagQuery    string
)

type productPage struct {
	Items      []domain.Product `json:"items"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	Total      int64            `json:"total"`
	TotalPages int              `json:"total_pages"`
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List published products",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		sess, err := loadSession()
		if err != nil {
			return err
		}
		q := url.Values{}
		q.Set("page", strconv.Itoa(flagPage))
		q.Set("page_size", strconv.Itoa(flagPageSize))
		if flagQuery != "" {
			q.Set("q", flagQuery)
		}
		var page productPage
		if err := sess.Do(ctx, "GET", "/api/v1/products?"+q.Encode(), nil, &page); err != nil {
			return err
		}

		fmt.Println(titleStyle.Render("Products") + mutedStyle.Render(fmt.Sprintf("  (page %d of %d, %d total)", page.Page, page.TotalPages, page.Total)))
		if len(page.Items) == 0 {
			fmt.Println(mutedStyle.Render("  no products"))
			return nil
		}
		for _, p := range page.Items {
			price := fmt.Sprintf("%d.%02d %s", p.PriceCents/100, p.PriceCents%100, p.Currency)
			fmt.Printf("  #%d  %s  %s\n", p.ID, p.Title, successStyle.Render(price))
		}
		return nil
	},
}

func init() {
	productsCmd.Flags().IntVar(&flagPage, "page", 1, "page number")
	productsCmd.Flags().IntVar(&flagPageSize, "page-size", 20, "items per page")
	productsCmd.Flags().StringVar(&flagQuery, "query", "", "title prefix filter")
	rootCmd.AddCommand(productsCmd)
}
