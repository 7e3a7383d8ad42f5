package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/duka/app/models"
	"github.com/shashiranjanraj/duka/app/repositories"
	"github.com/shashiranjanraj/duka/config"
	"github.com/shashiranjanraj/duka/pkg/money"
	"github.com/shashiranjanraj/duka/pkg/phone"
	"github.com/shashiranjanraj/duka/pkg/storage"
)

func bootDisk(ctx context.Context) (storage.Disk, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	disks, err := storage.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return disks.Default(), nil
}

// duka orders:list
func ordersListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "orders:list",
		Short: "Print the order log, newest last",
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := bootDisk(cmd.Context())
			if err != nil {
				return err
			}
			log, err := repositories.ConnectOrderLog(cmd.Context(), disk)
			if err != nil {
				return err
			}
			defer log.Close(context.Background())

			orders, err := log.All(cmd.Context())
			if err != nil {
				return err
			}
			if limit > 0 && len(orders) > limit {
				orders = orders[len(orders)-limit:]
			}
			printOrders(cmd, orders)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the last n orders")
	return cmd
}

func printOrders(cmd *cobra.Command, orders []models.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No orders yet.")
		return
	}
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Order", "Placed", "Customer", "Phone", "Items", "Total"})
	revenue := money.Zero
	for _, o := range orders {
		revenue = revenue.Add(o.Total)
		table.Append([]string{
			o.ID,
			humanize.Time(o.CreatedAt),
			o.CustomerName,
			o.Phone,
			strconv.Itoa(o.ItemCount()),
			money.Format(o.Total),
		})
	}
	table.SetFooter([]string{"", "", "", "", humanize.Comma(int64(len(orders))) + " orders", money.Format(revenue)})
	table.Render()
}

// duka products:list
func productsListCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "products:list",
		Short: "Print the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			disk, err := bootDisk(cmd.Context())
			if err != nil {
				return err
			}
			repo := repositories.NewProductRepository(disk, config.CatalogPath())

			var products []models.Product
			if category != "" {
				products, err = repo.ByCategory(cmd.Context(), category)
			} else {
				products, err = repo.All(cmd.Context())
			}
			if err != nil {
				return err
			}
			printProducts(cmd, products)
			return nil
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only this category (case-insensitive)")
	return cmd
}

func printProducts(cmd *cobra.Command, products []models.Product) {
	if len(products) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No products.")
		return
	}
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"ID", "Name", "Category", "Price", "In stock"})
	for _, p := range products {
		stock := "yes"
		if !p.Available() {
			stock = "no"
		}
		table.Append([]string{p.ID, p.Name, p.Category, money.Format(p.Price), stock})
	}
	table.Render()
}

// duka phone:check
func phoneCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "phone:check <number>...",
		Short: "Normalize phone numbers the way checkout does",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = config.Load()
			n := phone.New(config.PhoneCountryCode(), config.PhoneMobilePrefix())

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Input", "Normalized", "Error"})
			for _, raw := range args {
				norm, err := n.Normalize(raw)
				msg := ""
				if err != nil {
					msg = err.Error()
				}
				table.Append([]string{raw, norm, msg})
			}
			table.Render()
			return nil
		},
	}
}
