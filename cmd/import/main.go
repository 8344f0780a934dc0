package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/ikkim/replydesk-backend/config"
	"github.com/ikkim/replydesk-backend/internal/app/repository"
	"github.com/ikkim/replydesk-backend/internal/app/service"
	"github.com/ikkim/replydesk-backend/internal/db"
)

func main() {
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Parse()

	if flag.NArg() < 2 {
		log.Fatal("Usage: go run cmd/import/main.go [-yes] <business_id> <xlsx_file_path>")
	}

	businessID, err := uuid.Parse(flag.Arg(0))
	if err != nil {
		log.Fatal("Invalid business id:", err)
	}
	filePath := flag.Arg(1)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	businessRepo := repository.NewBusinessRepository(db.GetDB())
	business, err := businessRepo.FindByID(businessID)
	if err != nil {
		log.Fatal("Failed to load business:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	data, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	inputs, skipped, err := service.ParseReviewSheet(bytes.NewReader(data))
	if err != nil {
		log.Fatal("Failed to parse XLSX:", err)
	}

	fmt.Printf("Business: %s\n", business.Name)
	fmt.Printf("Reviews to import: %d (skipping %d rows)\n", len(inputs), len(skipped))
	for _, row := range skipped {
		fmt.Printf("  row %d: %s\n", row.Row, row.Reason)
	}
	if len(inputs) == 0 {
		fmt.Println("Nothing to import.")
		return
	}

	if !*yes {
		fmt.Print("Do you want to proceed with the import? (yes/no): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Import cancelled.")
			return
		}
	}

	importService := service.NewReviewImportService(
		repository.NewReviewRepository(db.GetDB()),
		repository.NewUsageRepository(db.GetDB()),
	)
	result, err := importService.ImportXLSX(business, bytes.NewReader(data))
	if err != nil {
		log.Fatal("Failed to import reviews:", err)
	}

	fmt.Println("Import completed successfully!")
	fmt.Printf("Total reviews imported: %d\n", result.Imported)
}
