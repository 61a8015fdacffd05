package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/propscore/leadscore/backend/service"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the lead scoring model and write its artifact",
	Long: `Fit a standardized logistic model on a generated lead dataset and
write the JSON artifact the serve command loads at startup.

Examples:
  leadscore train                                   # defaults
  leadscore train --data data/leads_data.csv --epochs 200`,
	RunE: runTrain,
}

var (
	trainData   string
	trainOut    string
	trainEpochs int
	trainLR     float64
)

func init() {
	rootCmd.AddCommand(trainCmd)
	trainCmd.Flags().StringVar(&trainData, "data", "data/leads_data.csv", "training dataset CSV")
	trainCmd.Flags().StringVar(&trainOut, "out", "model/lead_scoring_model.json", "artifact output path")
	trainCmd.Flags().IntVar(&trainEpochs, "epochs", 100, "gradient descent epochs")
	trainCmd.Flags().Float64Var(&trainLR, "learning-rate", 0.1, "gradient descent learning rate")
}

func runTrain(cmd *cobra.Command, args []string) error {
	opts := service.DefaultTrainOptions()
	opts.Epochs = trainEpochs
	opts.LearningRate = trainLR

	report, err := service.TrainModel(trainData, trainOut, opts)
	if err != nil {
		return err
	}

	fmt.Println("Model Performance:")
	fmt.Printf("  Train samples: %d\n", report.TrainSamples)
	fmt.Printf("  Test samples:  %d\n", report.TestSamples)
	fmt.Printf("  Accuracy:      %.4f\n", report.Accuracy)
	fmt.Printf("  Precision:     %.4f\n", report.Precision)
	fmt.Printf("  Recall:        %.4f\n", report.Recall)
	fmt.Printf("\nModel artifact saved to %s\n", trainOut)
	return nil
}
