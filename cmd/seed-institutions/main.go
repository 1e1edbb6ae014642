package main

import (
	"context"
	"fmt"
	"time"

	"github.com/unimatch/unimatch-backend/internal/config"
	"github.com/unimatch/unimatch-backend/internal/database"
	"github.com/unimatch/unimatch-backend/internal/logger"
)

type seedInstitution struct {
	id            int64
	name          string
	state         string
	city          string
	zip           string
	ownership     string
	admissionRate float64
	annualCost    float64
	satAvg        float64
	actAvg        float64
}

type seedProgram struct {
	cipCode string
	name    string
}

type seedOffering struct {
	uniID      int64
	cipCode    string
	degreeType string
	roiScore   float64
	earn1Year  float64
	earn2Years float64
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	fmt.Println("=== Seeding Sample Institutions ===")

	institutions := []seedInstitution{
		{101, "Cascadia State University", "WA", "Seattle", "98101", "Public", 0.62, 24800, 1180, 26},
		{102, "Puget Technical College", "WA", "Tacoma", "98402", "Public", 0.81, 18900, 1040, 21},
		{103, "Golden Bay University", "CA", "Oakland", "94607", "Private", 0.31, 56200, 1390, 31},
		{104, "Sierra Valley College", "CA", "Fresno", "93701", "Public", 0.74, 21500, 1010, 20},
		{105, "Lone Star Institute", "TX", "Austin", "73301", "Public", 0.55, 27300, 1230, 27},
		{106, "Gulf Coast University", "TX", "Houston", "77002", "Private", 0.48, 41800, 1150, 24},
		{107, "Empire Metropolitan University", "NY", "New York", "10007", "Private", 0.22, 61400, 1440, 33},
		{108, "Hudson River College", "NY", "Albany", "12207", "Public", 0.68, 23600, 1090, 23},
		{109, "Great Lakes University", "MI", "Ann Arbor", "48104", "Public", 0.41, 31200, 1310, 29},
		{110, "Prairie Heartland College", "KS", "Wichita", "67202", "Public", 0.88, 16400, 980, 19},
	}

	programs := []seedProgram{
		{"11.0701", "Computer Science"},
		{"14.0801", "Civil Engineering"},
		{"26.0101", "Biology"},
		{"52.0201", "Business Administration"},
		{"42.0101", "Psychology"},
		{"50.0701", "Fine Arts"},
	}

	offerings := []seedOffering{
		{101, "11.0701", "Bachelor's", 4.1, 74200, 81400},
		{101, "52.0201", "Bachelor's", 2.8, 52300, 58800},
		{101, "42.0101", "Bachelor's", 1.6, 38900, 42100},
		{102, "11.0701", "Associate", 3.2, 51600, 57900},
		{102, "52.0201", "Associate", 1.9, 36200, 39400},
		{103, "11.0701", "Bachelor's", 4.8, 96800, 108300},
		{103, "26.0101", "Bachelor's", 2.1, 41500, 45600},
		{103, "50.0701", "Bachelor's", 0.7, 28400, 30100},
		{104, "26.0101", "Bachelor's", 1.8, 37800, 40900},
		{104, "42.0101", "Bachelor's", 1.4, 34600, 37800},
		{105, "14.0801", "Bachelor's", 3.7, 68400, 75200},
		{105, "11.0701", "Bachelor's", 4.3, 78100, 86900},
		{106, "52.0201", "Bachelor's", 2.4, 49700, 54200},
		{106, "26.0101", "Bachelor's", 1.7, 39200, 42800},
		{107, "11.0701", "Bachelor's", 4.9, 102400, 115800},
		{107, "52.0201", "Master's", 3.9, 81600, 92300},
		{108, "42.0101", "Bachelor's", 1.3, 33900, 36500},
		{108, "50.0701", "Bachelor's", 0.6, 26800, 28300},
		{109, "14.0801", "Bachelor's", 3.5, 64800, 71600},
		{109, "11.0701", "Bachelor's", 4.4, 79800, 88400},
		{110, "52.0201", "Associate", 1.5, 31400, 34200},
		{110, "26.0101", "Bachelor's", 1.2, 32800, 35100},
	}

	for _, inst := range institutions {
		_, err := pool.Exec(ctx, `
			INSERT INTO institutions (uni_id, name, state, city, zip, ownership, admission_rate, annual_cost, site_url, logo_url)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, '')
			ON CONFLICT (uni_id) DO UPDATE
			SET name = EXCLUDED.name, state = EXCLUDED.state, city = EXCLUDED.city,
			    zip = EXCLUDED.zip, ownership = EXCLUDED.ownership,
			    admission_rate = EXCLUDED.admission_rate, annual_cost = EXCLUDED.annual_cost`,
			inst.id, inst.name, inst.state, inst.city, inst.zip, inst.ownership,
			inst.admissionRate, inst.annualCost, fmt.Sprintf("https://uni%d.example.edu", inst.id),
		)
		if err != nil {
			log.Fatal().Err(err).Str("institution", inst.name).Msg("Failed to seed institution")
		}

		_, err = pool.Exec(ctx, `
			INSERT INTO admissions (uni_id, sat_avg, act_avg)
			VALUES ($1, $2, $3)
			ON CONFLICT (uni_id) DO UPDATE
			SET sat_avg = EXCLUDED.sat_avg, act_avg = EXCLUDED.act_avg`,
			inst.id, inst.satAvg, inst.actAvg,
		)
		if err != nil {
			log.Fatal().Err(err).Str("institution", inst.name).Msg("Failed to seed admissions")
		}
	}
	fmt.Printf("Seeded %d institutions\n", len(institutions))

	for _, p := range programs {
		_, err := pool.Exec(ctx, `
			INSERT INTO programs (cip_code, name)
			VALUES ($1, $2)
			ON CONFLICT (cip_code) DO UPDATE SET name = EXCLUDED.name`,
			p.cipCode, p.name,
		)
		if err != nil {
			log.Fatal().Err(err).Str("program", p.name).Msg("Failed to seed program")
		}
	}
	fmt.Printf("Seeded %d programs\n", len(programs))

	seeded := 0
	for _, o := range offerings {
		var uniProgID int64
		err := pool.QueryRow(ctx, `
			INSERT INTO institution_programs (uni_id, cip_code, degree_type)
			VALUES ($1, $2, $3)
			ON CONFLICT (uni_id, cip_code, degree_type) DO UPDATE SET degree_type = EXCLUDED.degree_type
			RETURNING id`,
			o.uniID, o.cipCode, o.degreeType,
		).Scan(&uniProgID)
		if err != nil {
			log.Fatal().Err(err).Int64("uni_id", o.uniID).Str("cip_code", o.cipCode).Msg("Failed to seed offering")
		}

		_, err = pool.Exec(ctx, `
			INSERT INTO program_outcomes (uni_prog_id, roi_score, earn_1year, earn_2years)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (uni_prog_id) DO UPDATE
			SET roi_score = EXCLUDED.roi_score, earn_1year = EXCLUDED.earn_1year, earn_2years = EXCLUDED.earn_2years`,
			uniProgID, o.roiScore, o.earn1Year, o.earn2Years,
		)
		if err != nil {
			log.Fatal().Err(err).Int64("uni_prog_id", uniProgID).Msg("Failed to seed outcome")
		}
		seeded++
	}
	fmt.Printf("Seeded %d offerings with outcomes\n", seeded)

	fmt.Println("Done.")
}
