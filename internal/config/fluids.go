package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/san-kum/boilsim/internal/thermo"
	"gopkg.in/yaml.v3"
)

// FluidDocument is the on-disk form of a fluid list.
type FluidDocument struct {
	Fluids []thermo.FluidSpec `yaml:"fluids"`
}

var waterAntoine = thermo.Antoine{A: 8.07131, B: 1730.63, C: 233.426, MinTemp: 1, MaxTemp: 100, Unit: thermo.MMHg}

// BuiltinFluids returns fresh copies of the bundled fluid definitions.
func BuiltinFluids() []thermo.FluidSpec {
	return []thermo.FluidSpec{
		{
			Name:                 "water",
			SpecificHeat:         4.186,
			HeatOfVaporization:   2257,
			Antoine:              waterAntoine,
			SeaLevelBoilingPoint: 100,
			CoolingCoefficient:   0.0012,
		},
		{
			Name:                 "ethanol",
			SpecificHeat:         2.44,
			HeatOfVaporization:   841,
			Antoine:              thermo.Antoine{A: 8.20417, B: 1642.89, C: 230.3, MinTemp: -57, MaxTemp: 80, Unit: thermo.MMHg},
			SeaLevelBoilingPoint: 78.37,
			CoolingCoefficient:   0.0016,
		},
		{
			Name:                 "acetone",
			SpecificHeat:         2.15,
			HeatOfVaporization:   518,
			Antoine:              thermo.Antoine{A: 7.02447, B: 1161.0, C: 224.0, MinTemp: -26, MaxTemp: 77, Unit: thermo.MMHg},
			SeaLevelBoilingPoint: 56.05,
			CoolingCoefficient:   0.0018,
		},
		{
			Name:                  "seawater",
			SpecificHeat:          3.993,
			HeatOfVaporization:    2257,
			Antoine:               waterAntoine,
			SeaLevelBoilingPoint:  100,
			CoolingCoefficient:    0.0012,
			NonVolatileFraction:   0.035,
			BoilingPointElevation: 15,
		},
		{
			Name:                  "syrup",
			SpecificHeat:          3.5,
			HeatOfVaporization:    2257,
			Antoine:               waterAntoine,
			SeaLevelBoilingPoint:  100,
			CoolingCoefficient:    0.001,
			NonVolatileFraction:   0.3,
			BoilingPointElevation: 30,
		},
	}
}

// Catalog maps fluid names to validated fluids.
type Catalog struct {
	fluids map[string]*thermo.Fluid
}

// NewCatalog validates every spec. Later specs replace earlier ones with the
// same name, so user documents can override builtins.
func NewCatalog(specs ...thermo.FluidSpec) (*Catalog, error) {
	c := &Catalog{fluids: make(map[string]*thermo.Fluid, len(specs))}
	for _, spec := range specs {
		f, err := thermo.NewFluid(spec)
		if err != nil {
			return nil, fmt.Errorf("fluid %q: %w", spec.Name, err)
		}
		c.fluids[f.Name()] = f
	}
	return c, nil
}

// Builtin returns a catalog of the bundled fluids.
func Builtin() *Catalog {
	c, err := NewCatalog(BuiltinFluids()...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Get(name string) (*thermo.Fluid, error) {
	f, ok := c.fluids[name]
	if !ok {
		return nil, thermo.ConfigErrorf("fluid", "unknown fluid %q", name)
	}
	return f, nil
}

func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.fluids))
	for name := range c.fluids {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge adds the fluids of a YAML document to c.
func (c *Catalog) Merge(path string) error {
	specs, err := LoadFluids(path)
	if err != nil {
		return err
	}
	extra, err := NewCatalog(specs...)
	if err != nil {
		return err
	}
	for name, f := range extra.fluids {
		c.fluids[name] = f
	}
	return nil
}

// LoadFluids reads and validates a fluid document.
func LoadFluids(path string) ([]thermo.FluidSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseFluids(data)
}

func ParseFluids(data []byte) ([]thermo.FluidSpec, error) {
	var doc FluidDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", thermo.ErrConfiguration, err)
	}
	if len(doc.Fluids) == 0 {
		return nil, thermo.ConfigErrorf("fluids", "document defines no fluids")
	}
	for _, spec := range doc.Fluids {
		if _, err := thermo.NewFluid(spec); err != nil {
			return nil, fmt.Errorf("fluid %q: %w", spec.Name, err)
		}
	}
	return doc.Fluids, nil
}
