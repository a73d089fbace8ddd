// Package runname encodes and decodes experiment run directory names.
//
// # Name Format
//
// A run directory name carries a creation timestamp in its last 14 characters:
//
//	Run--<run_name>-<filler><unique_id>-<YYYYMMDDHHMMSS>
//
// The filler is a run of '-' characters that pads run_name and unique_id to a
// 30 character budget. When run_name and unique_id already exceed the budget no
// filler is written.
//
// # Decoding
//
// Decoding is positional: the last 14 characters are parsed as a UTC timestamp
// and everything before them is the prefix. The suffix must be all ASCII digits
// and form a valid calendar date and time, otherwise Decode returns a
// *MalformedNameError.
//
//	entry, err := runname.Decode("Run--mnist-------------------42-20180725223506")
//	if err != nil {
//	    var malformed *runname.MalformedNameError
//	    if errors.As(err, &malformed) {
//	        // skip or abort
//	    }
//	}
//	fmt.Println(entry.Timestamp) // 2018-07-25 22:35:06 +0000 UTC
package runname
