// Package hcl_adapter provides the HCL implementation of config.Loader. It
// parses profile files, evaluates their expressions and translates the
// decoded blocks into config.Profile values.
//
// A profile file looks like:
//
//	profile "etl" {
//	  driver_memory  = "16g"
//	  num_executors  = 20
//	  executor_env   = { PYSPARK_PYTHON = env("PYSPARK_PYTHON") }
//	  conf           = { "spark.sql.shuffle.partitions" = 400 }
//	  py_files       = ["hdfs:///libs/common.zip"]
//	}
package hcl_adapter
