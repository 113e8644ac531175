package types

import (
	"encoding/json"
	"testing"

	"github.com/matryer/is"
)

func TestWaterTankAcceptsResourceFieldNames(t *testing.T) {
	is := is.New(t)

	var tank WaterTank
	is.NoErr(json.Unmarshal([]byte(`{"tankId":4,"capacity":500,"currentLevel":125,"status":"LOW"}`), &tank))

	is.Equal(int64(4), tank.TankID)
	is.Equal(500.0, *tank.CapacityLiters)
	is.Equal(125.0, *tank.CurrentLevelLiters)
	is.Equal(25.0, *tank.FillPercentage)
	is.Equal(TankStatusLow, tank.Status)
}

func TestWaterTankPrefersDashboardFieldNames(t *testing.T) {
	is := is.New(t)

	var tank WaterTank
	is.NoErr(json.Unmarshal([]byte(`{"tankId":1,"capacityLiters":1000,"currentLevelLiters":900,"fillPercentage":90,"capacity":1}`), &tank))

	is.Equal(1000.0, *tank.CapacityLiters)
	is.Equal(900.0, *tank.CurrentLevelLiters)
	is.Equal(90.0, *tank.FillPercentage)
}

func TestWaterTankWithoutLevelsKeepsNils(t *testing.T) {
	is := is.New(t)

	var tanks []WaterTank
	is.NoErr(json.Unmarshal([]byte(`[{"tankId":2,"capacity":0,"currentLevel":0}]`), &tanks))

	is.Equal(1, len(tanks))
	is.True(tanks[0].FillPercentage == nil) // no capacity to derive from
}
