// Package model fits, forecasts and compares SARIMA models for one
// neighborhood at a time.
//
// A Frame is a neighborhood's daily ridership with the chronologically last
// rows flagged as held out. RunModel fits one configuration and writes into
// two caller-owned tables: a Results row and a Predictions column. GridSearch
// sweeps every combination of candidate orders and records each new best in a
// GridTable.
//
//	frame := model.NewFrame("Astoria", daily)
//	if err := frame.HoldOutFraction(0.1); err != nil {
//	    return err
//	}
//
//	grid := &model.GridSearch{
//	    Orders:         model.OrderGrid([]int{0, 1}, []int{0, 1}, []int{0, 1}),
//	    SeasonalOrders: model.SeasonalGrid([]int{0, 1}, []int{0, 1}, []int{0, 1}, 7),
//	}
//	table := model.NewGridTable()
//	err := grid.Run("Astoria", frame, table)
//
//	best, _ := table.Best("Astoria")
//	results, preds := model.NewResults(), model.NewPredictions(nil)
//	_, err = model.RunModel(results, preds, "Astoria", frame, best.Order, best.Seasonal, true)
//
// Tables are plain values without locks; run neighborhoods one at a time or
// give each goroutine its own tables.
package model
