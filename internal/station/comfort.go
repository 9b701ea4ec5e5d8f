package station

// Luminosity classification thresholds, in percent.
const (
	thresholdVeryBright = 80.0
	thresholdBright     = 60.0
	thresholdMedium     = 40.0
	thresholdDim        = 20.0
)

// anomalyToken mirrors the marker the sensors publish on failure.
const anomalyToken = "ANOMALIA"

// ComfortLevel classifies thermal comfort from temperature and humidity.
// A nil input means the sensor failed; the classification itself then
// reports the anomaly rather than guessing.
//
// High humidity (>70%) appends the humid qualifier; the comfortable band
// additionally distinguishes dry air (<30%).
func ComfortLevel(temp, hum *float64) string {
	if temp == nil || hum == nil {
		return anomalyToken
	}

	humid := *hum > 70
	dry := *hum < 30

	switch t := *temp; {
	case t < 15:
		return pick(humid, "Frio Humedo", "Frio")
	case t < 20:
		return pick(humid, "Fresco Humedo", "Fresco")
	case t < 24:
		if dry {
			return "Confortable Seco"
		}
		return pick(humid, "Confortable Humedo", "Confortable")
	case t < 28:
		return pick(humid, "Tibio Humedo", "Tibio")
	case t < 32:
		return pick(humid, "Caluroso Humedo", "Caluroso")
	default:
		return pick(humid, "Muy Caluroso Humedo", "Muy Caluroso")
	}
}

// LuminosityDescription classifies a light percentage into the display
// categories.
func LuminosityDescription(percent float64) string {
	switch {
	case percent >= thresholdVeryBright:
		return "Muy Luminoso"
	case percent >= thresholdBright:
		return "Luminoso"
	case percent >= thresholdMedium:
		return "Iluminacion Media"
	case percent >= thresholdDim:
		return "Tenue"
	default:
		return "Oscuro"
	}
}

func pick(humid bool, whenHumid, otherwise string) string {
	if humid {
		return whenHumid
	}
	return otherwise
}
