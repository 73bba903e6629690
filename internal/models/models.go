package models

// CatalogEntry represents one row of the generated product catalog
type CatalogEntry struct {
	ID          int     `json:"id" parquet:"id"`
	Title       string  `json:"title_en" parquet:"title_en"`
	Description string  `json:"description_en" parquet:"description_en"`
	Category    string  `json:"category" parquet:"category"`
	OldPrice    float64 `json:"old_price" parquet:"old_price"`
	NewPrice    float64 `json:"new_price" parquet:"new_price"`
}

// CatalogStats summarizes the artifacts of a generated catalog directory
type CatalogStats struct {
	TotalProducts   int  `json:"total_products"`
	TotalImages     int  `json:"total_images"`
	CSVExists       bool `json:"csv_exists"`
	ImagesDirExists bool `json:"images_dir_exists"`
}
