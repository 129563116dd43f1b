// Package domain models the field-goal make probability of an NFL kick attempt.
//
// # Model
//
// The model is a logistic GAM fitted offline on play-by-play field-goal data.
// Its output for one attempt is
//
//	L = kicker + smooth(yfog)
//	  + isDomeTRUE*dome + isTurfTRUE*turf
//	  + sqrtGameTemp*(1-dome)*sqrt(clamp(temp, 0, 100))
//	  + sqrtWindSpeed*(1-dome)*sqrt(wind)
//	  + isRainingTRUE*(1-dome)*(min(50, chanceOfRain)/50)
//	  + highAltitudeTRUE*[home == DEN]
//
//	p = exp(L) / (1 + exp(L)), rounded to 5 decimal places.
//
// Indoor venues (dome or retractable roof) ignore outdoor weather entirely.
//
// # Inputs
//
// yfog is yards from the kicking team's own goal line at the snap. A yfog of 67
// is a 50-yard attempt (100 - 67 + 17). Only integer values 0–100 have a
// smoothing term.
//
// Temperature is in degrees Fahrenheit, wind in mph and chanceOfRain in percent.
// Supplying a home team code replaces is_dome/is_turf with that stadium's roof
// and surface; supplying an offense team code replaces kicker_code with that
// team's kicker. Kicker codes missing from the adjustment table score as the
// "none" kicker (adjustment 0), which covers rookies and mid-season signings.
//
// # Reference data
//
// Coefficients, smoothing terms, kicker adjustments and the team table ship as
// an embedded YAML document (data/model.yaml). [LoadTables] accepts a file of
// the same schema for refitted models.
package domain
