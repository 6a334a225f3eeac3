package store

// SQL query constants organized by entity.
// All SQL lives here; PostgresStore methods reference these constants.

// deviceColumns is the canonical SELECT column list for devices.
const deviceColumns = `id, dedupe_key, platform, listing_url, title,
	brand, model, variant, storage, carrier,
	description, condition_raw, condition_norm,
	guessed_grade, manual_grade, final_grade,
	asking_price, matched_base_price, deductions, buyback_value,
	mao, offer_target, expected_profit, profit_margin_pct,
	match_confidence, match_notes,
	risk_score, market_advantage, hot_seller,
	flags, notes,
	seller_name, seller_contact, location, zip, distance_miles,
	deal_class, last_updated`

// Device queries.
const (
	queryInsertDevice = `
		INSERT INTO devices (
			dedupe_key, platform, listing_url, title,
			brand, model, variant, storage, carrier,
			description, condition_raw, condition_norm,
			guessed_grade, manual_grade, final_grade,
			asking_price, matched_base_price, deductions, buyback_value,
			mao, offer_target, expected_profit, profit_margin_pct,
			match_confidence, match_notes,
			risk_score, market_advantage, hot_seller,
			flags, notes,
			seller_name, seller_contact, location, zip, distance_miles,
			deal_class, last_updated
		) VALUES (
			@dedupe_key, @platform, @listing_url, @title,
			@brand, @model, @variant, @storage, @carrier,
			@description, @condition_raw, @condition_norm,
			@guessed_grade, @manual_grade, @final_grade,
			@asking_price, @matched_base_price, @deductions, @buyback_value,
			@mao, @offer_target, @expected_profit, @profit_margin_pct,
			@match_confidence, @match_notes,
			@risk_score, @market_advantage, @hot_seller,
			@flags, @notes,
			@seller_name, @seller_contact, @location, @zip, @distance_miles,
			@deal_class, now()
		)
		RETURNING id, last_updated`

	queryUpdateDevice = `
		UPDATE devices SET
			brand = @brand,
			model = @model,
			variant = @variant,
			storage = @storage,
			carrier = @carrier,
			condition_norm = @condition_norm,
			guessed_grade = @guessed_grade,
			manual_grade = @manual_grade,
			final_grade = @final_grade,
			asking_price = @asking_price,
			matched_base_price = @matched_base_price,
			deductions = @deductions,
			buyback_value = @buyback_value,
			mao = @mao,
			offer_target = @offer_target,
			expected_profit = @expected_profit,
			profit_margin_pct = @profit_margin_pct,
			match_confidence = @match_confidence,
			match_notes = @match_notes,
			risk_score = @risk_score,
			market_advantage = @market_advantage,
			hot_seller = @hot_seller,
			flags = @flags,
			notes = @notes,
			zip = @zip,
			distance_miles = @distance_miles,
			deal_class = @deal_class,
			last_updated = now()
		WHERE id = @id`

	queryGetDeviceByID = `
		SELECT ` + deviceColumns + `
		FROM devices
		WHERE id = $1`

	queryGetDeviceByDedupeKey = `
		SELECT ` + deviceColumns + `
		FROM devices
		WHERE dedupe_key = $1`

	queryListDedupeKeys = `SELECT dedupe_key FROM devices`

	queryDeleteDevice = `DELETE FROM devices WHERE id = $1`
)

// Catalog queries.
const (
	queryDeleteCatalog = `DELETE FROM catalog`

	queryInsertCatalogRow = `
		INSERT INTO catalog (pos, brand, model, variant, storage, prices)
		VALUES (@pos, @brand, @model, @variant, @storage, @prices)
		RETURNING id`

	queryListCatalog = `
		SELECT id, brand, model, variant, storage, prices
		FROM catalog
		ORDER BY pos`
)

// Verdict queries.
const (
	queryDeleteVerdicts = `DELETE FROM verdicts`

	queryInsertVerdict = `
		INSERT INTO verdicts (
			rank, device_id, composite_score,
			title, seller_name, seller_contact,
			deal_class, final_grade,
			asking_price, buyback_value, mao, offer_target,
			expected_profit, profit_margin_pct,
			risk_score, market_advantage, hot_seller,
			recommended_action, auto_message, status, created_at
		) VALUES (
			@rank, @device_id, @composite_score,
			@title, @seller_name, @seller_contact,
			@deal_class, @final_grade,
			@asking_price, @buyback_value, @mao, @offer_target,
			@expected_profit, @profit_margin_pct,
			@risk_score, @market_advantage, @hot_seller,
			@recommended_action, @auto_message, @status, now()
		)
		RETURNING id, created_at`

	verdictColumns = `id, rank, device_id, composite_score,
		title, seller_name, seller_contact,
		deal_class, final_grade,
		asking_price, buyback_value, mao, offer_target,
		expected_profit, profit_margin_pct,
		risk_score, market_advantage, hot_seller,
		recommended_action, auto_message, status, created_at`

	queryListVerdicts = `
		SELECT ` + verdictColumns + `
		FROM verdicts
		ORDER BY rank
		LIMIT $1`

	queryGetVerdict = `
		SELECT ` + verdictColumns + `
		FROM verdicts
		WHERE id = $1`

	querySetVerdictStatus = `UPDATE verdicts SET status = $2 WHERE id = $1`
)

// Audit queries.
const (
	queryInsertAudit = `
		INSERT INTO audit_log (stage, summary, counts)
		VALUES (@stage, @summary, @counts)
		RETURNING id, created_at`

	queryListAudit = `
		SELECT id, stage, summary, counts, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1`
)
