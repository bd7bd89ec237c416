package params

// Thermal coefficients for glass/cell/polymer sheet, open rack.
const (
	openRackA  = -3.56
	openRackB  = -0.075
	openRackDT = 3.0
)

// Thermal coefficients for insulated back mounting.
const (
	insulatedA  = -2.81
	insulatedB  = -0.0455
	insulatedDT = 0.0
)

// canadianSolarCS5P220M is the reference flat-plate silicon module.
var canadianSolarCS5P220M = ModuleParameters{
	Name:              "Canadian_Solar_CS5P_220M",
	ImpRef:            5.9,
	VmpRef:            37.3,
	Area:              1.701,
	Efficiency:        12.94,
	AlphaImp:          0.0005,
	BetaVmp:           -0.0046,
	VoltageIrradiance: 0.028,
	AirMass:           [5]float64{0.9281, 0.06615, -0.01384, 0.001298, -0.000046},
	IAM:               0.05,
	ThermalA:          openRackA,
	ThermalB:          openRackB,
	ThermalDT:         openRackDT,
}

// insolight is the micro-tracking concentrator hybrid module.
var insolight = CPVParameters{
	Concentrator: ModuleParameters{
		Name:              "insolight_iii_v",
		ImpRef:            3.78,
		VmpRef:            24.8,
		AlphaImp:          0.00062,
		BetaVmp:           -0.0019,
		VoltageIrradiance: 0.018,
		AirMass:           [5]float64{0.9, 0.08, -0.016, 0.0012, -0.00004},
		ThermalA:          insulatedA,
		ThermalB:          insulatedB,
		ThermalDT:         insulatedDT,
	},
	Flat: ModuleParameters{
		Name:              "insolight_si_companion",
		ImpRef:            1.08,
		VmpRef:            20.1,
		AlphaImp:          0.0005,
		BetaVmp:           -0.0041,
		VoltageIrradiance: 0.026,
		AirMass:           [5]float64{0.9281, 0.06615, -0.01384, 0.001298, -0.000046},
		IAM:               0.05,
		ThermalA:          insulatedA,
		ThermalB:          insulatedB,
		ThermalDT:         insulatedDT,
	},
	Area:              0.4,
	Efficiency:        28.9,
	AcceptanceAngle:   60,
	OpticalEfficiency: 0.85,
}

// perovskite top cells are wide band gap: amorphous-like spectral response.
var perovskiteSpectral = [6]float64{1.12094, -0.047620, -0.0083627, -0.10443, 0.098382, -0.0033818}

var siliconSpectral = [6]float64{0.85914, -0.020880, -0.0058853, 0.12029, 0.026814, -0.0017810}

// korte2020 is the perovskite-silicon calibration after Korte et al. (2020).
var korte2020 = TandemParameters{
	Type: PSIKorte2020,
	Top: ModuleParameters{
		Name:              "korte2020_perovskite",
		ImpRef:            6.55,
		VmpRef:            36.2,
		AlphaImp:          0.0002,
		BetaVmp:           -0.0017,
		VoltageIrradiance: 0.03,
		IAM:               0.05,
		Spectral:          perovskiteSpectral,
	},
	Bottom: ModuleParameters{
		Name:              "korte2020_silicon",
		ImpRef:            6.29,
		VmpRef:            23.4,
		AlphaImp:          0.0005,
		BetaVmp:           -0.0035,
		VoltageIrradiance: 0.025,
		IAM:               0.05,
		Spectral:          siliconSpectral,
	},
	Area:             1.64,
	Efficiency:       21.1,
	CellToModuleLoss: 0.1,
}

// chen2020 is the perovskite-silicon calibration after Chen et al. (2020).
var chen2020 = TandemParameters{
	Type: PSIChen2020,
	Top: ModuleParameters{
		Name:              "chen2020_perovskite",
		ImpRef:            6.82,
		VmpRef:            35.1,
		AlphaImp:          0.00025,
		BetaVmp:           -0.0015,
		VoltageIrradiance: 0.03,
		IAM:               0.05,
		Spectral:          perovskiteSpectral,
	},
	Bottom: ModuleParameters{
		Name:              "chen2020_silicon",
		ImpRef:            6.05,
		VmpRef:            24.1,
		AlphaImp:          0.0005,
		BetaVmp:           -0.0034,
		VoltageIrradiance: 0.025,
		IAM:               0.05,
		Spectral:          siliconSpectral,
	},
	Area:             1.64,
	Efficiency:       21.8,
	CellToModuleLoss: 0.1,
}

// Default returns the registry of built-in tables.
func Default() *Registry {
	// both tandem calibrations share the open rack thermal mounting
	k, c := korte2020, chen2020
	for _, p := range []*ModuleParameters{&k.Top, &k.Bottom, &c.Top, &c.Bottom} {
		p.ThermalA, p.ThermalB, p.ThermalDT = openRackA, openRackB, openRackDT
	}
	return NewRegistry(canadianSolarCS5P220M, insolight, map[PSIType]TandemParameters{
		PSIKorte2020: k,
		PSIChen2020:  c,
	})
}
