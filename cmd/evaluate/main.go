package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/ashahba/medical-decathlon/config"
	"github.com/ashahba/medical-decathlon/mask"
	"github.com/ashahba/medical-decathlon/metric"
	"github.com/ashahba/medical-decathlon/num"
	"github.com/ashahba/medical-decathlon/stats"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	conf := config.Default()
	cfgFile := flag.String("cfg", "", "YAML file with scoring settings")
	smooth := flag.Float64("smooth", conf.Smooth, "smoothing constant added to the overlap ratios")
	weight := flag.Float64("weight", conf.BlendWeight, "dice weighting in the combined loss")
	threshold := flag.Float64("threshold", conf.Threshold, "foreground threshold for binarising masks")
	binarize := flag.Bool("binarize", false, "threshold the prediction before scoring")
	dir := flag.String("dir", "", "score every *_truth.png image under this directory")
	selftest := flag.Bool("selftest", false, "score synthetic masks instead of files")
	debug := flag.Bool("debug", false, "verbose logging")
	flag.Parse()

	log := newLogger(*debug)
	defer log.Sync()
	var err error
	if *cfgFile != "" {
		if conf, err = config.Load(*cfgFile); err != nil {
			log.Fatal(err)
		}
		log.Infof("loaded scoring settings from %s", *cfgFile)
	}
	// flags given on the command line take precedence over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "smooth":
			conf.Smooth = *smooth
		case "weight":
			conf.BlendWeight = *weight
		case "threshold":
			conf.Threshold = *threshold
		}
	})
	args := applySettings(log, &conf, flag.Args())
	if err = conf.Validate(); err != nil {
		log.Fatal(err)
	}
	log.Debugf("\n%s", conf)

	switch {
	case *selftest:
		runSelftest(log, conf)
	case *dir != "":
		runDir(log, conf, *dir, *binarize)
	case len(args) == 2:
		runPair(log, conf, args[0], args[1], *binarize)
	default:
		fmt.Println("Usage: evaluate [opts] <truth.png> <prediction.png>")
		flag.PrintDefaults()
		os.Exit(1)
	}
}

func newLogger(debug bool) *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger.Sugar()
}

// apply any key=value arguments to the settings, returning the rest
func applySettings(log *zap.SugaredLogger, conf *config.Config, args []string) []string {
	var rest []string
	var err error
	for _, arg := range args {
		if pos := strings.Index(arg, "="); pos > 0 {
			if *conf, err = conf.Set(arg[:pos], arg[pos+1:]); err != nil {
				log.Fatal(err)
			}
		} else {
			rest = append(rest, arg)
		}
	}
	return rest
}

// scores for one ground truth and prediction pair
type result struct {
	name        string
	dice        float64
	jaccard     float64
	sensitivity float64
	specificity float64
	diceLoss    float64
	bce         float64
	combined    float64
}

func score(conf config.Config, name string, truth, pred *num.Array) (r result, err error) {
	r.name = name
	if r.dice, err = metric.Dice(truth, pred, conf.Smooth); err != nil {
		return r, err
	}
	if r.jaccard, err = metric.Jaccard(truth, pred, conf.Smooth); err != nil {
		return r, err
	}
	if r.sensitivity, err = metric.Sensitivity(truth, pred, conf.Smooth); err != nil {
		return r, err
	}
	if r.specificity, err = metric.Specificity(truth, pred, conf.Smooth); err != nil {
		return r, err
	}
	bt, err := mask.Stack([]*num.Array{truth})
	if err != nil {
		return r, err
	}
	bp, err := mask.Stack([]*num.Array{pred})
	if err != nil {
		return r, err
	}
	if r.diceLoss, err = metric.DiceLoss(bt, bp, metric.SpatialAxes, conf.Smooth); err != nil {
		return r, err
	}
	if r.bce, err = metric.CrossEntropy(bt, bp); err != nil {
		return r, err
	}
	r.combined, err = metric.CombinedLoss(bt, bp, conf.BlendWeight, metric.SpatialAxes, conf.Smooth)
	return r, err
}

func loadPair(conf config.Config, truthFile, predFile string, binarize bool) (truth, pred *num.Array, err error) {
	if truth, err = mask.Load(truthFile); err != nil {
		return
	}
	truth = mask.Binarize(truth, conf.Threshold)
	if pred, err = mask.Load(predFile); err != nil {
		return
	}
	if err = mask.Validate(pred); err != nil {
		return
	}
	if binarize {
		pred = mask.Binarize(pred, conf.Threshold)
	}
	return
}

func runPair(log *zap.SugaredLogger, conf config.Config, truthFile, predFile string, binarize bool) {
	truth, pred, err := loadPair(conf, truthFile, predFile, binarize)
	if err != nil {
		log.Fatal(err)
	}
	log.Debugf("truth %v foreground %g", truth.Dims(), num.Sum(truth))
	log.Debugf("prediction values %g to %g", num.Min(pred), num.Max(pred))
	r, err := score(conf, filepath.Base(predFile), truth, pred)
	if err != nil {
		log.Fatal(err)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintf(w, "dice\t%.4f\n", r.dice)
	fmt.Fprintf(w, "jaccard\t%.4f\n", r.jaccard)
	fmt.Fprintf(w, "sensitivity\t%.4f\n", r.sensitivity)
	fmt.Fprintf(w, "specificity\t%.4f\n", r.specificity)
	fmt.Fprintf(w, "dice loss\t%.4f\n", r.diceLoss)
	fmt.Fprintf(w, "cross entropy\t%.4f\n", r.bce)
	fmt.Fprintf(w, "combined loss\t%.4f\n", r.combined)
	w.Flush()
}

func runDir(log *zap.SugaredLogger, conf config.Config, dir string, binarize bool) {
	files, err := filepath.Glob(filepath.Join(dir, "*_truth.png"))
	if err != nil {
		log.Fatal(err)
	}
	if len(files) == 0 {
		log.Fatalf("no *_truth.png images found under %s", dir)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "image\tdice\tjaccard\tcombined loss")
	var scores []float64
	var avg stats.Average
	var smoothed stats.EMA
	for _, truthFile := range files {
		predFile := strings.Replace(truthFile, "_truth.png", "_pred.png", 1)
		if _, err = os.Stat(predFile); err != nil {
			log.Warnf("skipping %s: no prediction image", filepath.Base(truthFile))
			continue
		}
		truth, pred, err := loadPair(conf, truthFile, predFile, binarize)
		if err != nil {
			log.Fatal(err)
		}
		r, err := score(conf, filepath.Base(predFile), truth, pred)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\n", r.name, r.dice, r.jaccard, r.combined)
		scores = append(scores, r.dice)
		avg.Add(r.dice)
		smoothed = stats.EMA(smoothed.Add(r.dice, 10))
		log.Debugf("%s: dice %.4f running %s trend %.4f", r.name, r.dice, avg.String(), float64(smoothed))
	}
	w.Flush()
	if len(scores) == 0 {
		log.Fatal("no prediction images found")
	}
	fmt.Println("\ndice over", len(scores), "images:", stats.Summarize(scores))
}

// score synthetic masks to show the metrics without needing image files
func runSelftest(log *zap.SugaredLogger, conf config.Config) {
	cases := []struct {
		name        string
		truth, pred *num.Array
	}{
		{"identical", mask.Rect(64, 64, 16, 16, 48, 48), mask.Rect(64, 64, 16, 16, 48, 48)},
		{"offset", mask.Rect(64, 64, 16, 16, 48, 48), mask.Rect(64, 64, 24, 24, 56, 56)},
		{"disc", mask.Rect(64, 64, 16, 16, 48, 48), mask.Disc(64, 64, 32, 32, 18)},
		{"empty", mask.Rect(64, 64, 16, 16, 48, 48), num.NewArray(64, 64)},
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "case\tdice\tjaccard\tsensitivity\tspecificity\tcombined loss")
	var truths, preds []*num.Array
	for _, test := range cases {
		r, err := score(conf, test.name, test.truth, test.pred)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n",
			r.name, r.dice, r.jaccard, r.sensitivity, r.specificity, r.combined)
		truths = append(truths, test.truth)
		preds = append(preds, test.pred)
	}
	w.Flush()
	bt, err := mask.Stack(truths)
	if err != nil {
		log.Fatal(err)
	}
	bp, err := mask.Stack(preds)
	if err != nil {
		log.Fatal(err)
	}
	scores, mean, err := metric.SoftDice(bt, bp, metric.SpatialAxes, conf.Smooth)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("\nper sample dice: %.4f  mean %.4f\n", scores, mean)
}
