package diffeq

// referenceCIR is the diffuse-field correction filter of a dummy head,
// sampled at 48 kHz. Responses are multiplied by it, not divided.
var referenceCIR = [...]float64{
	6.347623467e-01, -3.229786158e-01, 1.802470833e-01, -4.306831583e-02,
	2.021296769e-01, -1.278433017e-03, 9.211553633e-02, 1.112025697e-02,
	7.102338970e-02, 2.116948832e-03, 3.533534333e-02, -4.782989156e-03,
	1.961155981e-02, -8.324747905e-03, 1.890523545e-02, -5.151430145e-03,
	1.720650494e-02, 1.534134732e-03, 1.382324938e-02, 1.913833781e-03,
	1.158019807e-02, 5.637062714e-03, 1.140537951e-02, 3.263822291e-03,
	8.795930073e-03, 1.387702301e-03, 7.939434610e-03, 2.960683196e-04,
	6.152246147e-03, -1.074279426e-04, 4.396600183e-03, 1.461175125e-04,
	3.282734193e-03, 5.852363538e-04, 3.019699361e-03, 6.767663872e-04,
	3.362895921e-03, 6.903585745e-04, 3.830261528e-03, 7.804607158e-04,
	4.022008739e-03, 1.188374124e-03, 3.886274062e-03, 1.763702370e-03,
	3.659871174e-03, 2.204471966e-03, 3.490221454e-03, 2.231831197e-03,
	3.459951375e-03, 1.921618590e-03, 3.385438351e-03, 1.435524318e-03,
	3.069915809e-03, 1.020093914e-03, 2.491780557e-03, 7.384330384e-04,
	1.780032762e-03, 5.001776153e-04, 1.181742875e-03, 2.089139743e-04,
	8.342980873e-04, -1.436960738e-04, 7.332742680e-04, -4.467872786e-04,
	7.045842358e-04, -5.819032085e-04, 6.271958118e-04, -5.311760469e-04,
	4.657348327e-04, -3.975940053e-04, 2.999485296e-04, -3.226001572e-04,
	2.031517652e-04, -4.043234221e-04, 1.937316119e-04, -6.016456755e-04,
	1.712022640e-04, -8.126918692e-04, 5.642620090e-05, -9.491824894e-04,
	-1.794864074e-04, -1.004400896e-03, -4.529971920e-04, -1.054187655e-03,
	-6.583482609e-04, -1.149442978e-03, -7.305723266e-04, -1.291075023e-03,
	-6.998708704e-04, -1.398946973e-03, -6.441176520e-04, -1.401926391e-03,
	-6.296651554e-04, -1.279979013e-03, -6.440877914e-04, -1.105200034e-03,
	-6.326425355e-04, -9.625115199e-04, -5.436314968e-04, -9.006902692e-04,
	-3.925641358e-04, -8.932135534e-04, -2.433453046e-04, -8.688018424e-04,
	-1.677869004e-04, -7.866683300e-04, -1.704707392e-04, -6.564725190e-04,
	-1.993057813e-04, -5.436229985e-04, -1.821098849e-04, -4.932153970e-04,
	-8.811930456e-05, -4.982755636e-04, 4.047903712e-05, -5.087682512e-04,
	1.367125078e-04, -4.608065938e-04, 1.659864502e-04, -3.472715616e-04,
	1.572848123e-04, -2.113831288e-04, 1.804512576e-04, -1.090367441e-04,
	2.806144475e-04, -9.502422472e-05, 4.297870037e-04, -1.934093307e-04,
	3.295705246e-04, -1.011353816e-04, 9.054032853e-05, -3.264446059e-05,
	5.004780542e-05, -2.827877506e-05, 1.018938110e-05, -3.748103700e-05,
	-7.563044164e-06, -3.955123975e-05, -1.398747645e-05, -3.543049024e-05,
	-1.030693420e-05, -2.779769966e-05, -5.537351171e-06, -2.013198900e-05,
	-3.731379820e-06, -1.549381341e-05, -3.401703907e-06, -1.303655790e-05,
	-3.378006340e-06, -1.178074490e-05, -2.873806807e-06, -1.096920823e-05,
	-1.997708296e-06, -9.551962648e-06, -7.752050806e-07, -7.491975794e-06,
	3.070530283e-07, -5.174365924e-06, 1.402136945e-06, -2.910591320e-06,
	2.711339903e-06, -9.658213003e-07, 4.243900548e-06, 6.322999866e-07,
	5.791084277e-06, 2.036470278e-06, 7.097078196e-06, 3.371567345e-06,
	7.995602573e-06, 4.608377367e-06, 8.501098819e-06, 5.562949809e-06,
	8.723820429e-06, 6.061910881e-06, 8.764889571e-06, 6.082213986e-06,
	8.638658983e-06, 5.773607882e-06, 8.304193216e-06, 5.348522336e-06,
	7.753198588e-06, 4.956483735e-06, 7.065953469e-06, 4.619603260e-06,
	6.384686458e-06, 4.281295787e-06, 5.828461781e-06, 3.897186161e-06,
	5.418819001e-06, 3.482799229e-06, 5.076829893e-06, 3.095952707e-06,
	4.697511940e-06, 2.770437732e-06, 4.229279057e-06, 2.481095180e-06,
	3.696067552e-06, 2.159476708e-06, 3.161283757e-06, 1.751146215e-06,
	2.668529532e-06, 1.263349191e-06, 2.209349077e-06, 7.628735261e-07,
	1.750232286e-06, 3.238855584e-07, 1.278573791e-06, -1.676131767e-08,
	8.267254543e-07, -2.746158145e-07, 4.547930814e-07, -4.837585834e-07,
	2.041634843e-07, -6.597906008e-07, 6.949969134e-08, -7.863818610e-07,
	4.663265329e-09, -8.368477893e-07, -3.919615565e-08, -8.071175444e-07,
	-8.178678002e-08, -7.293683666e-07, -1.106800198e-07, -6.513132007e-07,
	-1.078565930e-07, -6.034958346e-07, -7.444621986e-08, -5.817859119e-07,
	-3.486836775e-08, -5.580810125e-07, -1.567322983e-08, -5.089673891e-07,
	-2.121177900e-08, -4.357118257e-07, -3.146131533e-08, -3.597972693e-07,
	-2.085375783e-08, -3.012759464e-07, 1.810938954e-08, -2.608179557e-07,
	6.712920708e-08, -2.225000060e-07, 1.015123914e-07, -1.685384348e-07,
	1.120519144e-07, -9.806510093e-08, 1.112391672e-07, -3.039341934e-08,
	1.162228216e-07, 1.226189994e-08, 1.272632346e-07, 1.991670295e-08,
	1.242260055e-07, -2.947287525e-09, 7.869989815e-08, -2.011494793e-08,
}
